package rooms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/domain/hosts"
	"gowaay/internal/domain/pricing"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func details() Details {
	return Details{
		Title:        "Lake view room",
		Description:  "Quiet room near the lake",
		Address:      "Road 5, Sreemangal",
		LocationName: "Sreemangal",
	}
}

func approvedHost(id hosts.ID) *hosts.Profile {
	return &hosts.Profile{ID: id, UserID: "u-" + string(id), DisplayName: "Host " + string(id), Status: hosts.StatusApproved}
}

func TestNewRoomUsesTieredCommission(t *testing.T) {
	r, err := NewRoom(CreateParams{ID: "r-1", HostID: "h-1", Details: details(), BasePriceTk: 5000, Now: now})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, r.Status)
	assert.False(t, r.IsAdminCreated)
	assert.Equal(t, int64(900), r.CommissionTk)
	assert.Equal(t, int64(5900), r.TotalPriceTk)
	assert.Equal(t, DefaultRoomType, r.RoomType)
	assert.Equal(t, 1, r.MaxGuests)
	require.Len(t, r.PendingEvents(), 1)
	assert.Equal(t, "room.submitted", r.PendingEvents()[0].EventName())
}

func TestNewRoomValidation(t *testing.T) {
	_, err := NewRoom(CreateParams{ID: "r", HostID: "h", Details: details(), BasePriceTk: 0})
	assert.ErrorIs(t, err, pricing.ErrInvalidBasePrice)

	d := details()
	d.Title = "  "
	_, err = NewRoom(CreateParams{ID: "r", HostID: "h", Details: d, BasePriceTk: 1000})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = NewRoom(CreateParams{ID: "r", Details: details(), BasePriceTk: 1000})
	assert.ErrorIs(t, err, ErrHostRequired)
}

func TestNewAdminRoomFlatRule(t *testing.T) {
	r, err := NewAdminRoom(CreateParams{
		ID: "r-2", HostID: "sys", Details: details(), BasePriceTk: 5000,
		Rule: pricing.FlatRateRule{Rate: pricing.AdminRoomCommissionRate}, Now: now,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, r.Status)
	assert.True(t, r.IsAdminCreated)
	assert.Equal(t, int64(500), r.CommissionTk)
	assert.Equal(t, int64(5500), r.TotalPriceTk)
}

func TestApproveRecomputesTotal(t *testing.T) {
	r, err := NewRoom(CreateParams{ID: "r-1", HostID: "h-1", Details: details(), BasePriceTk: 2000, Now: now})
	require.NoError(t, err)
	require.Equal(t, int64(2490), r.TotalPriceTk)

	require.NoError(t, r.Approve(600, now))
	assert.Equal(t, StatusApproved, r.Status)
	assert.Equal(t, int64(600), r.CommissionTk)
	assert.Equal(t, int64(2600), r.TotalPriceTk)
}

func TestApproveWithoutOverrideKeepsCommission(t *testing.T) {
	r, err := NewRoom(CreateParams{ID: "r-1", HostID: "h-1", Details: details(), BasePriceTk: 5000, Now: now})
	require.NoError(t, err)

	require.NoError(t, r.Approve(0, now))
	assert.Equal(t, int64(900), r.CommissionTk)
	assert.Equal(t, int64(5900), r.TotalPriceTk)
	assert.True(t, r.IsBookable())

	assert.ErrorIs(t, r.Approve(-1, now), pricing.ErrInvalidCommission)
	assert.Equal(t, int64(5900), r.TotalPriceTk)
}

func TestReject(t *testing.T) {
	r, err := NewRoom(CreateParams{ID: "r-1", HostID: "h-1", Details: details(), BasePriceTk: 5000, Now: now})
	require.NoError(t, err)
	r.ClearEvents()

	r.Reject("blurry photos", now)
	assert.Equal(t, StatusRejected, r.Status)
	assert.False(t, r.IsBookable())
	require.Len(t, r.PendingEvents(), 1)
	assert.Equal(t, "room.rejected", r.PendingEvents()[0].EventName())
}

func TestAssignHost(t *testing.T) {
	system := hosts.NewSystemHost("sys", "admin", now)

	t.Run("admin created room", func(t *testing.T) {
		r, err := NewAdminRoom(CreateParams{ID: "r", HostID: system.ID, Details: details(), BasePriceTk: 3000, Now: now})
		require.NoError(t, err)
		require.NoError(t, r.AssignHost(system, approvedHost("h-2"), now))
		assert.Equal(t, hosts.ID("h-2"), r.HostID)
	})

	t.Run("host room parked on system host", func(t *testing.T) {
		r, err := NewRoom(CreateParams{ID: "r", HostID: system.ID, Details: details(), BasePriceTk: 3000, Now: now})
		require.NoError(t, err)
		require.NoError(t, r.AssignHost(system, approvedHost("h-2"), now))
	})

	t.Run("room owned by a profile named after the system host", func(t *testing.T) {
		legacy := approvedHost("h-legacy")
		legacy.DisplayName = hosts.SystemHostName
		r, err := NewRoom(CreateParams{ID: "r", HostID: legacy.ID, Details: details(), BasePriceTk: 3000, Now: now})
		require.NoError(t, err)
		require.NoError(t, r.AssignHost(legacy, approvedHost("h-2"), now))
		assert.Equal(t, hosts.ID("h-2"), r.HostID)
	})

	t.Run("regular host room", func(t *testing.T) {
		owner := approvedHost("h-1")
		r, err := NewRoom(CreateParams{ID: "r", HostID: owner.ID, Details: details(), BasePriceTk: 3000, Now: now})
		require.NoError(t, err)
		assert.ErrorIs(t, r.AssignHost(owner, approvedHost("h-2"), now), ErrHostNotReassignable)
		assert.Equal(t, owner.ID, r.HostID)
	})

	t.Run("target not approved", func(t *testing.T) {
		r, err := NewAdminRoom(CreateParams{ID: "r", HostID: system.ID, Details: details(), BasePriceTk: 3000, Now: now})
		require.NoError(t, err)
		target := approvedHost("h-3")
		target.Status = hosts.StatusPending
		assert.ErrorIs(t, r.AssignHost(system, target, now), ErrHostNotApproved)
	})

	t.Run("target missing", func(t *testing.T) {
		r, err := NewAdminRoom(CreateParams{ID: "r", HostID: system.ID, Details: details(), BasePriceTk: 3000, Now: now})
		require.NoError(t, err)
		assert.ErrorIs(t, r.AssignHost(system, nil, now), hosts.ErrNotFound)
	})
}

func TestUpdateSendsHostRoomBackToModeration(t *testing.T) {
	r, err := NewRoom(CreateParams{ID: "r", HostID: "h", Details: details(), BasePriceTk: 2000, Now: now})
	require.NoError(t, err)
	require.NoError(t, r.Approve(0, now))

	require.NoError(t, r.Update(details(), 3000, nil, now.Add(time.Hour)))
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, int64(540), r.CommissionTk)
	assert.Equal(t, int64(3540), r.TotalPriceTk)
}
