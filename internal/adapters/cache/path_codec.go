package cache

import (
	"delivery-simulation/internal/domain"
	"encoding/json"
	"fmt"
)

// locationKey renders a location as a cache key, scoped to a namespace
// (normally the region hash) so paths of different regions never mix.
func locationKey(namespace string, loc domain.Location) string {
	return fmt.Sprintf("%s|%d,%d", namespace, loc.X, loc.Y)
}

type hop struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func encodeHops(hops []domain.Location) (string, error) {
	out := make([]hop, 0, len(hops))
	for _, h := range hops {
		out = append(out, hop{X: h.X, Y: h.Y})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode path hops: %w", err)
	}
	return string(b), nil
}

func decodeHops(s string) ([]domain.Location, error) {
	var in []hop
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, fmt.Errorf("decode path hops: %w", err)
	}
	out := make([]domain.Location, 0, len(in))
	for _, h := range in {
		out = append(out, domain.Location{X: h.X, Y: h.Y})
	}
	return out, nil
}
