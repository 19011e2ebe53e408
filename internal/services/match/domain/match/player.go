package match

// Player is one participant. Identity is the ID; Username is display only.
type Player struct {
	ID       string `json:"id" msgpack:"id"`
	Username string `json:"username" msgpack:"username"`
}

// Is reports whether the player has the given id.
func (p Player) Is(id string) bool {
	return p.ID != "" && p.ID == id
}
