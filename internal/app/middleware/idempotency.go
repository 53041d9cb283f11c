package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gowaay/internal/app/actor"
	"gowaay/internal/app/commands"
)

// IdempotentCommand carries a client-supplied key. A repeated key from the
// same caller gets the stored reply instead of a second execution.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a fresh pointer of the handler's result type.
	ResultPrototype() any
}

// IdempotencyRecord is the stored reply of one successful command.
type IdempotencyRecord struct {
	Key        string
	Command    string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays stored replies. Failed commands are not recorded, so a
// client may retry with the same key once the cause is fixed.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return commandStep(func(ctx context.Context, cmd commands.Command, next commands.Bus) (any, error) {
		idCmd, ok := cmd.(IdempotentCommand)
		if !ok {
			return next.Dispatch(ctx, cmd)
		}
		key := scopedKey(ctx, idCmd)
		if key == "" {
			return next.Dispatch(ctx, cmd)
		}
		rec, found, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
		if found {
			return replay(codec, idCmd, rec)
		}

		result, err := next.Dispatch(ctx, cmd)
		if err != nil {
			return nil, err
		}
		rec = IdempotencyRecord{Key: key, Command: cmd.Key(), OccurredAt: time.Now().UTC()}
		if result != nil {
			if rec.Payload, err = codec.Encode(result); err != nil {
				return nil, err
			}
		}
		if err := store.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("idempotency save: %w", err)
		}
		return result, nil
	})
}

func replay(codec ResultCodec, cmd IdempotentCommand, rec IdempotencyRecord) (any, error) {
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, fmt.Errorf("idempotency replay of %s: %w", rec.Command, err)
	}
	return proto, nil
}

// scopedKey namespaces client keys by command and caller.
func scopedKey(ctx context.Context, cmd IdempotentCommand) string {
	raw := strings.TrimSpace(cmd.IdempotencyKey())
	if raw == "" {
		return ""
	}
	owner := "anonymous"
	if a, ok := actor.FromContext(ctx); ok && a.UserID != "" {
		owner = a.UserID
	}
	return strings.Join([]string{cmd.Key(), owner, raw}, ":")
}
