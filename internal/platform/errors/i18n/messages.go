package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown              = "UNKNOWN"
	CodeCellOutOfBounds      = "CELL_OUT_OF_BOUNDS"
	CodeCellAlreadyTargeted  = "CELL_ALREADY_TARGETED"
	CodeShipInvalid          = "SHIP_INVALID"
	CodeMatchInvalidPhase    = "MATCH_INVALID_PHASE"
	CodeMatchPlacementClosed = "MATCH_PLACEMENT_CLOSED"
	CodeMatchSamePlayerTwice = "MATCH_SAME_PLAYER_TWICE"
	CodeNotAttacker          = "NOT_ATTACKER"
	CodePlayerIDEmpty        = "PLAYER_ID_EMPTY"
	CodePlayerNotInMatch     = "PLAYER_NOT_IN_MATCH"
	CodePlayerAlreadyPlaying = "PLAYER_ALREADY_PLAYING"
	CodeDeliveryFailed       = "DELIVERY_FAILED"
	CodeCommandInvalid       = "COMMAND_INVALID"
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeNotFound             = "NOT_FOUND"
)

var enUS = map[Code]string{
	CodeUnknown:              "Something went wrong.",
	CodeCellOutOfBounds:      "Cell ({{.Row}}, {{.Col}}) is outside the board.",
	CodeCellAlreadyTargeted:  "Cell ({{.Row}}, {{.Col}}) was already fired upon.",
	CodeShipInvalid:          "That ship placement is not valid.",
	CodeMatchInvalidPhase:    "The match is not in a state that allows this action.",
	CodeMatchPlacementClosed: "Ships can no longer be placed in this match.",
	CodeMatchSamePlayerTwice: "A player cannot face themselves.",
	CodeNotAttacker:          "It is not your side that fires in this match.",
	CodePlayerIDEmpty:        "A player id is required.",
	CodePlayerNotInMatch:     "Player {{.PlayerID}} is not in a match.",
	CodePlayerAlreadyPlaying: "Player {{.PlayerID}} is already in a match.",
	CodeDeliveryFailed:       "The message could not be delivered.",
	CodeCommandInvalid:       "That command was not understood.",
	CodeTokenInvalid:         "Your session token is not valid.",
	CodeNotFound:             "Not found.",
}

var ptBR = map[Code]string{
	CodeUnknown:              "Algo deu errado.",
	CodeCellOutOfBounds:      "A célula ({{.Row}}, {{.Col}}) está fora do tabuleiro.",
	CodeCellAlreadyTargeted:  "A célula ({{.Row}}, {{.Col}}) já foi atingida.",
	CodeShipInvalid:          "Essa posição de navio não é válida.",
	CodeMatchInvalidPhase:    "A partida não permite esta ação agora.",
	CodeMatchPlacementClosed: "Não é mais possível posicionar navios nesta partida.",
	CodeMatchSamePlayerTwice: "Um jogador não pode enfrentar a si mesmo.",
	CodeNotAttacker:          "Não é o seu lado que ataca nesta partida.",
	CodePlayerIDEmpty:        "O identificador do jogador é obrigatório.",
	CodePlayerNotInMatch:     "O jogador {{.PlayerID}} não está em uma partida.",
	CodePlayerAlreadyPlaying: "O jogador {{.PlayerID}} já está em uma partida.",
	CodeDeliveryFailed:       "A mensagem não pôde ser entregue.",
	CodeCommandInvalid:       "Esse comando não foi entendido.",
	CodeTokenInvalid:         "Seu token de sessão não é válido.",
	CodeNotFound:             "Não encontrado.",
}
