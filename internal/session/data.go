package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"tricktable/internal/game/engine"
)

// requestData holds the optional arguments a ClientRequest may carry in its
// Data object.
type requestData struct {
	Seat           *int   `mapstructure:"Seat"`
	GameType       string `mapstructure:"GameType"`
	ScrewTheDealer *bool  `mapstructure:"ScrewTheDealer"`
}

func decodeData(raw map[string]any) (requestData, error) {
	var d requestData
	if len(raw) == 0 {
		return d, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &d,
	})
	if err != nil {
		return d, err
	}
	if err := dec.Decode(raw); err != nil {
		return d, fmt.Errorf("bad request data: %w", err)
	}
	return d, nil
}

// parseGameType accepts a variant name or its wire number.
func parseGameType(s string) (engine.GameType, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if gt := engine.GameType(n); gt.Valid() {
			return gt, nil
		}
		return engine.GameTypeInvalid, fmt.Errorf("unknown game type %d", n)
	}
	return engine.ParseGameType(s)
}

// seat returns the requested seat.
func (d requestData) seat() (int, error) {
	if d.Seat == nil {
		return 0, fmt.Errorf("a Seat is required")
	}
	if *d.Seat < 0 || *d.Seat >= engine.NumSeats {
		return 0, fmt.Errorf("seat %d out of range", *d.Seat)
	}
	return *d.Seat, nil
}
