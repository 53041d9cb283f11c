package hosts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/app/uow"
	domainhosts "gowaay/internal/domain/hosts"
	domainuser "gowaay/internal/domain/user"
	"gowaay/internal/infra/storage/memory"
)

func unitCtx(t *testing.T, f memory.Factory) context.Context {
	t.Helper()
	unit, err := f.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return uow.Bind(context.Background(), unit)
}

func TestApplyHostOncePerUser(t *testing.T) {
	users := memory.NewUserRepository()
	u, err := domainuser.NewUser(domainuser.CreateParams{ID: "u1", Email: "a@b.test", Name: "Rahim", PasswordHash: "x"})
	require.NoError(t, err)
	require.NoError(t, users.Save(context.Background(), u))
	f := memory.NewFactory(users)
	out := memory.NewOutbox()
	h := &ApplyHostHandler{Outbox: out}

	cmd := ApplyHostCommand{UserID: "u1", DisplayName: "Rahim Stays", Phone: "01700000001", LocationName: "Cox's Bazar"}
	res, err := h.Handle(unitCtx(t, f), cmd)
	require.NoError(t, err)
	assert.Equal(t, string(domainhosts.StatusPending), res.Status)
	require.NotNil(t, res.User)
	assert.Equal(t, "a@b.test", res.User.Email)
	require.Len(t, out.Records(), 1)
	assert.Equal(t, "host.applied", out.Records()[0].Name)

	_, err = h.Handle(unitCtx(t, f), cmd)
	assert.ErrorIs(t, err, domainhosts.ErrAlreadyApplied)

	me := &MyHostProfileHandler{UoWFactory: f}
	profile, err := me.Handle(context.Background(), MyHostProfileQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, res.ID, profile.ID)

	_, err = me.Handle(context.Background(), MyHostProfileQuery{UserID: "nobody"})
	assert.ErrorIs(t, err, domainhosts.ErrNotFound)
}

func TestApplyHostUnknownUser(t *testing.T) {
	f := memory.NewFactory(nil)
	h := &ApplyHostHandler{}
	_, err := h.Handle(unitCtx(t, f), ApplyHostCommand{UserID: "ghost", DisplayName: "X", Phone: "1", LocationName: "Y"})
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}
