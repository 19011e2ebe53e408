// Package inspect exposes a read-only gRPC view of the running match
// registry and of recorded match outcomes.
package inspect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
	"github.com/louisbranch/seabattle/internal/services/match/storage"
)

const (
	localeMetadataKey = "accept-language"
	outcomesPageSize  = 50
)

// Sessions is the registry read surface.
type Sessions interface {
	GameSession(playerID string) (*match.Match, bool)
	Sessions() []*match.Match
}

// Service implements InspectorServer.
type Service struct {
	sessions Sessions
	outcomes storage.OutcomeStore
}

var _ InspectorServer = (*Service)(nil)

// NewService creates an inspector over sessions. outcomes may be nil, in
// which case ListPlayerOutcomes is unavailable.
func NewService(sessions Sessions, outcomes storage.OutcomeStore) *Service {
	return &Service{sessions: sessions, outcomes: outcomes}
}

// GetPlayerMatch returns a snapshot of the match the player is in.
func (s *Service) GetPlayerMatch(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s == nil || s.sessions == nil {
		return nil, status.Error(codes.Internal, "match registry is not configured")
	}
	playerID := strings.TrimSpace(in.GetValue())
	if playerID == "" {
		return nil, apperrors.HandleError(
			apperrors.New(apperrors.CodePlayerIDEmpty, "player id is required"),
			localeFromContext(ctx),
		)
	}
	m, ok := s.sessions.GameSession(playerID)
	if !ok {
		return nil, apperrors.HandleError(
			apperrors.WithMetadata(
				apperrors.CodePlayerNotInMatch,
				fmt.Sprintf("player %s is not in a match", playerID),
				map[string]string{"PlayerID": playerID},
			),
			localeFromContext(ctx),
		)
	}
	out, err := structpb.NewStruct(snapshotFields(m.Snapshot()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode match: %v", err)
	}
	return out, nil
}

// ListMatches returns a snapshot of every registered match.
func (s *Service) ListMatches(_ context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	if s == nil || s.sessions == nil {
		return nil, status.Error(codes.Internal, "match registry is not configured")
	}
	matches := s.sessions.Sessions()
	items := make([]any, 0, len(matches))
	for _, m := range matches {
		items = append(items, snapshotFields(m.Snapshot()))
	}
	out, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode matches: %v", err)
	}
	return out, nil
}

// ListPlayerOutcomes returns the player's recorded outcomes, newest first.
func (s *Service) ListPlayerOutcomes(ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error) {
	if s == nil || s.outcomes == nil {
		return nil, status.Error(codes.Unimplemented, "outcome store is not configured")
	}
	playerID := strings.TrimSpace(in.GetValue())
	if playerID == "" {
		return nil, apperrors.HandleError(
			apperrors.New(apperrors.CodePlayerIDEmpty, "player id is required"),
			localeFromContext(ctx),
		)
	}
	outcomes, err := s.outcomes.ListOutcomesByPlayer(ctx, playerID, outcomesPageSize)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list outcomes: %v", err)
	}
	items := make([]any, 0, len(outcomes))
	for _, o := range outcomes {
		items = append(items, map[string]any{
			"matchId":    o.MatchID,
			"winnerId":   o.WinnerID,
			"loserId":    o.LoserID,
			"reason":     string(o.Reason),
			"won":        o.WinnerID == playerID,
			"finishedAt": formatTime(o.FinishedAt),
		})
	}
	out, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode outcomes: %v", err)
	}
	return out, nil
}

func snapshotFields(s match.Snapshot) map[string]any {
	players := make([]any, 0, len(s.Players))
	for i, p := range s.Players {
		players = append(players, map[string]any{
			"id":       p.ID,
			"username": p.Username,
			"accepted": s.Accepted[i],
		})
	}
	fields := map[string]any{
		"id":        s.ID,
		"phase":     s.Phase.String(),
		"players":   players,
		"createdAt": formatTime(s.CreatedAt),
	}
	if s.DamagedID != "" {
		fields["damagedId"] = s.DamagedID
	}
	if s.WinnerID != "" {
		fields["winnerId"] = s.WinnerID
		fields["loserId"] = s.LoserID()
		fields["reason"] = string(s.Reason)
	}
	if !s.StartedAt.IsZero() {
		fields["startedAt"] = formatTime(s.StartedAt)
	}
	if !s.FinishedAt.IsZero() {
		fields["finishedAt"] = formatTime(s.FinishedAt)
	}
	return fields
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func localeFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(localeMetadataKey); len(values) > 0 {
		return values[0]
	}
	return ""
}
