package hosts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	"gowaay/internal/app/handlers/support"
	"gowaay/internal/app/outbox"
	"gowaay/internal/app/queries"
	"gowaay/internal/app/uow"
	domainhosts "gowaay/internal/domain/hosts"
	domainuser "gowaay/internal/domain/user"
)

const (
	applyHostKey     = "hosts.apply"
	myHostProfileKey = "hosts.me"
)

type ApplyHostCommand struct {
	UserID         string `validate:"required"`
	DisplayName    string `validate:"required"`
	Phone          string `validate:"required"`
	WhatsApp       string
	LocationName   string `validate:"required"`
	LocationMapURL string
	NIDFrontURL    string
	NIDBackURL     string
}

func (c ApplyHostCommand) Key() string { return applyHostKey }

type ApplyHostHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle files a host application. A user holds at most one profile.
func (h *ApplyHostHandler) Handle(ctx context.Context, cmd ApplyHostCommand) (*dto.Host, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := unit.Hosts().ByUser(ctx, cmd.UserID)
	switch {
	case err == nil && existing != nil:
		return nil, domainhosts.ErrAlreadyApplied
	case err != nil && !errors.Is(err, domainhosts.ErrNotFound):
		return nil, err
	}
	user, err := unit.Users().ByID(ctx, domainuser.ID(cmd.UserID))
	if err != nil {
		return nil, err
	}
	profile, err := domainhosts.Apply(domainhosts.ApplyParams{
		ID:             domainhosts.ID(uuid.NewString()),
		UserID:         string(user.ID),
		DisplayName:    cmd.DisplayName,
		Phone:          cmd.Phone,
		WhatsApp:       cmd.WhatsApp,
		LocationName:   cmd.LocationName,
		LocationMapURL: cmd.LocationMapURL,
		NIDFrontURL:    cmd.NIDFrontURL,
		NIDBackURL:     cmd.NIDBackURL,
		Now:            time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Hosts().Save(ctx, profile); err != nil {
		return nil, err
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, profile); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "host application received", "host_id", profile.ID, "user_id", user.ID)
	}
	result := dto.MapHost(profile, user)
	return &result, nil
}

type MyHostProfileQuery struct {
	UserID string
}

func (q MyHostProfileQuery) Key() string { return myHostProfileKey }

type MyHostProfileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *MyHostProfileHandler) Handle(ctx context.Context, q MyHostProfileQuery) (*dto.Host, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	profile, err := unit.Hosts().ByUser(execCtx, q.UserID)
	if err != nil {
		return nil, err
	}
	result := dto.MapHost(profile, nil)
	return &result, nil
}

var (
	_ commands.Handler[ApplyHostCommand, *dto.Host]  = (*ApplyHostHandler)(nil)
	_ queries.Handler[MyHostProfileQuery, *dto.Host] = (*MyHostProfileHandler)(nil)
)
