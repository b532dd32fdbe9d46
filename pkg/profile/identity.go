package profile

import (
	"context"
	"strconv"
	"strings"

	"github.com/myusername/intralism-score-checker/pkg/models"
	"github.com/myusername/intralism-score-checker/pkg/rank"
)

// Identity selects the player to build a profile for. It is one of ByLink,
// ByRank or BySearch.
type Identity interface {
	resolve(ctx context.Context, gateway models.Gateway) (string, error)
	String() string
}

// ByLink identifies a player by profile link
type ByLink string

// ByRank identifies a player by global rank
type ByRank int

// BySearch identifies a player by the first result of a name search
type BySearch string

func (l ByLink) resolve(context.Context, models.Gateway) (string, error) {
	link := strings.TrimSpace(string(l))
	if link == "" {
		return "", models.NewError("profile.ByLink", models.ErrInvalidInput, "empty profile link")
	}
	return link, nil
}

func (r ByRank) resolve(ctx context.Context, gateway models.Gateway) (string, error) {
	return rank.PlayerLink(ctx, gateway, int(r))
}

func (s BySearch) resolve(ctx context.Context, gateway models.Gateway) (string, error) {
	query := strings.TrimSpace(string(s))
	if query == "" {
		return "", models.NewError("profile.BySearch", models.ErrInvalidInput, "empty search query")
	}
	return gateway.SearchPlayer(ctx, query)
}

func (l ByLink) String() string   { return "link:" + string(l) }
func (r ByRank) String() string   { return "rank:" + strconv.Itoa(int(r)) }
func (s BySearch) String() string { return "search:" + string(s) }
