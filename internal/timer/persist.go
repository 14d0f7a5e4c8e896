package timer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/verte-zerg/sprout/internal/model"
)

// Keys under which the engine persists its state.
const (
	KeySettings = "sprout-timer-settings"
	KeySession  = "sprout-timer-session"
	KeySprouts  = "sprout-timer-sprouts"
)

// Store is the key/value persistence the engine writes through.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

func loadJSON(ctx context.Context, st Store, key string, target any) (bool, error) {
	raw, ok, err := st.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, st Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := st.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// LoadState reads the persisted engine state, substituting defaults for
// anything missing. Values that fail to decode are reported in the error
// alongside the defaults used in their place.
func LoadState(ctx context.Context, st Store) (State, error) {
	state := State{
		Settings: model.DefaultSettings(),
		Session:  model.IdleSession(),
	}
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var settings model.Settings
	if ok, err := loadJSON(ctx, st, KeySettings, &settings); err != nil {
		keep(err)
	} else if ok {
		state.Settings = settings.Normalize()
	}

	var session model.Session
	if ok, err := loadJSON(ctx, st, KeySession, &session); err != nil {
		keep(err)
	} else if ok {
		if session.Valid() {
			state.Session = session
		} else {
			keep(fmt.Errorf("decode %s: inconsistent session %+v", KeySession, session))
		}
	}

	raw, ok, err := st.Get(ctx, KeySprouts)
	switch {
	case err != nil:
		keep(fmt.Errorf("get %s: %w", KeySprouts, err))
	case ok:
		count, perr := strconv.Atoi(raw)
		if perr != nil {
			keep(fmt.Errorf("decode %s: %w", KeySprouts, perr))
		} else if count > 0 {
			state.Sprouts = count
		}
	}
	return state, firstErr
}
