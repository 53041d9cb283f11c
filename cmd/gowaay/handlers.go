package main

import (
	"context"
	"log/slog"
	"time"

	"gowaay/internal/app/actor"
	"gowaay/internal/app/commands"
	adminapp "gowaay/internal/app/handlers/admin"
	bookingapp "gowaay/internal/app/handlers/booking"
	hostsapp "gowaay/internal/app/handlers/hosts"
	paymentsapp "gowaay/internal/app/handlers/payments"
	roomsapp "gowaay/internal/app/handlers/rooms"
	uploadsapp "gowaay/internal/app/handlers/uploads"
	"gowaay/internal/app/outbox"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/queries"
	"gowaay/internal/app/retry"
	"gowaay/internal/app/uow"
	"gowaay/internal/infra/obs"
)

type handlerDeps struct {
	factory        uow.UoWFactory
	outbox         outbox.Outbox
	rules          policies.CommissionRules
	gateway        policies.PaymentGateway
	gatewayTimeout time.Duration
	images         policies.ImageStore
	processor      policies.ImageProcessor
	metrics        *obs.Metrics
	logger         *slog.Logger
}

func registerHandlers(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, d handlerDeps) {
	encoder := outbox.JSONEventEncoder{Headers: eventHeaders}
	settler := paymentsapp.Settler{Outbox: d.outbox, Encoder: encoder, Observer: d.metrics, Logger: d.logger}

	commands.Register(cmds, (&hostsapp.ApplyHostHandler{Outbox: d.outbox, Encoder: encoder, Logger: d.logger}).Handle)
	queries.Register(qs, (&hostsapp.MyHostProfileHandler{UoWFactory: d.factory}).Handle)

	commands.Register(cmds, (&roomsapp.SubmitRoomHandler{Rules: d.rules, Outbox: d.outbox, Encoder: encoder, Logger: d.logger}).Handle)
	commands.Register(cmds, (&roomsapp.UpdateRoomHandler{Rules: d.rules, Logger: d.logger}).Handle)
	queries.Register(qs, (&roomsapp.ListRoomsHandler{UoWFactory: d.factory}).Handle)
	queries.Register(qs, (&roomsapp.MyRoomsHandler{UoWFactory: d.factory}).Handle)
	queries.Register(qs, (&roomsapp.GetRoomHandler{UoWFactory: d.factory}).Handle)
	queries.Register(qs, (&roomsapp.CommissionQuoteHandler{Rule: d.rules.ForHostRoom()}).Handle)

	commands.Register(cmds, (&bookingapp.RequestBookingHandler{UoWFactory: d.factory, Outbox: d.outbox, Encoder: encoder, Logger: d.logger}).Handle)
	commands.Register(cmds, (&bookingapp.CancelBookingHandler{Outbox: d.outbox, Encoder: encoder}).Handle)
	queries.Register(qs, (&bookingapp.ListMyBookingsHandler{UoWFactory: d.factory, Logger: d.logger}).Handle)

	commands.Register(cmds, (&paymentsapp.CreatePaymentHandler{UoWFactory: d.factory, Gateway: d.gateway, Timeout: d.gatewayTimeout, Settler: settler}).Handle)
	commands.Register(cmds, (&paymentsapp.VerifyPaymentHandler{UoWFactory: d.factory, Gateway: d.gateway, Timeout: d.gatewayTimeout, Settler: settler}).Handle)
	commands.Register(cmds, (&paymentsapp.HandleIPNHandler{Settler: settler}).Handle)
	commands.Register(cmds, (&paymentsapp.SubmitManualPaymentHandler{Settler: settler}).Handle)
	commands.Register(cmds, (&paymentsapp.ReviewManualPaymentHandler{Settler: settler}).Handle)
	queries.Register(qs, (&paymentsapp.PaymentStatusHandler{UoWFactory: d.factory}).Handle)

	commands.Register(cmds, (&adminapp.ModerateHostHandler{Outbox: d.outbox, Encoder: encoder, Logger: d.logger}).Handle)
	commands.Register(cmds, (&adminapp.ModerateRoomHandler{Outbox: d.outbox, Encoder: encoder, Logger: d.logger}).Handle)
	commands.Register(cmds, (&adminapp.AssignHostHandler{Outbox: d.outbox, Encoder: encoder, Logger: d.logger}).Handle)
	commands.Register(cmds, (&adminapp.CreateRoomHandler{Rules: d.rules, Outbox: d.outbox, Encoder: encoder, Logger: d.logger}).Handle)
	queries.Register(qs, (&adminapp.StatsHandler{UoWFactory: d.factory, Retry: retry.Default}).Handle)
	queries.Register(qs, (&adminapp.ListHostsHandler{UoWFactory: d.factory}).Handle)
	queries.Register(qs, (&adminapp.ListRoomsHandler{UoWFactory: d.factory}).Handle)
	queries.Register(qs, (&adminapp.ListBookingsHandler{UoWFactory: d.factory}).Handle)
	queries.Register(qs, (&adminapp.ListUsersHandler{UoWFactory: d.factory}).Handle)

	commands.Register(cmds, (&uploadsapp.UploadImageHandler{Processor: d.processor, Store: d.images, Logger: d.logger}).Handle)
	commands.Register(cmds, (&uploadsapp.DeleteImageHandler{Store: d.images}).Handle)
}

// eventHeaders tags outbox records with the request and actor that caused them.
func eventHeaders(ctx context.Context) map[string]string {
	h := map[string]string{}
	if id := obs.RequestIDFromContext(ctx); id != "" {
		h["request-id"] = id
	}
	if a, ok := actor.FromContext(ctx); ok && a.UserID != "" {
		h["actor-id"] = a.UserID
	}
	return h
}
