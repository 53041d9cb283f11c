package rooms

import (
	"time"

	"gowaay/internal/domain/hosts"
)

type RoomSubmitted struct {
	RoomID       ID        `json:"room_id"`
	HostID       hosts.ID  `json:"host_id"`
	TotalPriceTk int64     `json:"total_price_tk"`
	AdminCreated bool      `json:"admin_created"`
	At           time.Time `json:"at"`
}

func (e RoomSubmitted) EventName() string     { return "room.submitted" }
func (e RoomSubmitted) AggregateID() string   { return string(e.RoomID) }
func (e RoomSubmitted) OccurredAt() time.Time { return e.At }

type RoomModerated struct {
	RoomID       ID        `json:"room_id"`
	Status       Status    `json:"status"`
	CommissionTk int64     `json:"commission_tk"`
	TotalPriceTk int64     `json:"total_price_tk"`
	At           time.Time `json:"at"`
}

func (e RoomModerated) EventName() string     { return "room." + string(e.Status) }
func (e RoomModerated) AggregateID() string   { return string(e.RoomID) }
func (e RoomModerated) OccurredAt() time.Time { return e.At }

type RoomHostAssigned struct {
	RoomID         ID        `json:"room_id"`
	PreviousHostID hosts.ID  `json:"previous_host_id"`
	HostID         hosts.ID  `json:"host_id"`
	At             time.Time `json:"at"`
}

func (e RoomHostAssigned) EventName() string     { return "room.host_assigned" }
func (e RoomHostAssigned) AggregateID() string   { return string(e.RoomID) }
func (e RoomHostAssigned) OccurredAt() time.Time { return e.At }
