package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/repositories"
	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/payment"
	"github.com/shashiranjanraj/groupcart/pkg/realtime"
	"github.com/shashiranjanraj/groupcart/pkg/storage"
)

// PaymentInfo tells one participant how much they owe the payer and how to
// pay. Money is settled outside groupcart.
type PaymentInfo struct {
	OrderID     string          `json:"orderId"`
	PayerEmail  string          `json:"payerEmail,omitempty"`
	VenmoHandle string          `json:"venmoHandle"`
	DeepLink    string          `json:"deepLink"`
	QRCodeURL   string          `json:"qrCodeUrl,omitempty"`
	AmountOwed  decimal.Decimal `json:"amountOwed"`
	IsPayer     bool            `json:"isPayer"`
}

// PaymentService exposes the payer's Venmo details.
type PaymentService struct {
	repos  repositories.Repos
	disk   storage.Disk
	events realtime.Publisher
	log    *slog.Logger
}

func NewPaymentService(repos repositories.Repos, disk storage.Disk, events realtime.Publisher, log *slog.Logger) *PaymentService {
	return &PaymentService{repos: repos, disk: disk, events: events, log: log}
}

// SetHandle stores the payer's Venmo handle and renders its QR code. Once a
// payer is known only they may change it.
func (s *PaymentService) SetHandle(ctx context.Context, p auth.Participant, groupID, handle string) (models.Group, error) {
	if err := requireMember(p, groupID); err != nil {
		return models.Group{}, err
	}
	h, err := payment.ValidateHandle(handle)
	if err != nil {
		return models.Group{}, &AppError{Kind: KindValidation, Message: "invalid venmo handle", Err: err}
	}
	g, err := s.repos.Groups.FindByID(ctx, groupID)
	if err != nil {
		return models.Group{}, lookup("group", err)
	}
	if g.CheckoutUserEmail != "" && !strings.EqualFold(g.CheckoutUserEmail, p.Email) {
		return models.Group{}, forbidden("only the payer can change the venmo handle")
	}

	fields := map[string]any{"venmo_handle": h, "venmo_qr_code": ""}
	if g.CheckoutUserEmail == "" {
		fields["checkout_user_email"] = p.Email
	}
	if url, err := s.storeQR(ctx, groupID, h); err != nil {
		s.log.Warn("payment: qr code not stored", "group_id", groupID, "error", err)
	} else {
		fields["venmo_qr_code"] = url
	}
	if err := s.repos.Groups.Update(ctx, groupID, fields); err != nil {
		return models.Group{}, lookup("group", err)
	}

	g, err = s.repos.Groups.FindByID(ctx, groupID)
	if err != nil {
		return models.Group{}, lookup("group", err)
	}
	s.events.Publish(ctx, realtime.Event{Type: realtime.GroupUpdated, GroupID: g.ID, Data: g})
	return g, nil
}

// Info returns what email owes for the group's order and where to pay it.
func (s *PaymentService) Info(ctx context.Context, groupID, email string) (PaymentInfo, error) {
	g, err := s.repos.Groups.FindByID(ctx, groupID)
	if err != nil {
		return PaymentInfo{}, lookup("group", err)
	}
	if g.VenmoHandle == "" {
		return PaymentInfo{}, notFound("the payer has not shared a venmo handle yet")
	}

	order, err := s.repos.Orders.FindByGroup(ctx, groupID)
	if err != nil {
		return PaymentInfo{}, lookup("order", err)
	}

	info := PaymentInfo{
		OrderID:     order.ID,
		PayerEmail:  g.CheckoutUserEmail,
		VenmoHandle: payment.FormatHandle(g.VenmoHandle),
		DeepLink:    payment.DeepLink(g.VenmoHandle),
		QRCodeURL:   g.VenmoQRCode,
		AmountOwed:  decimal.Zero,
		IsPayer:     strings.EqualFold(g.CheckoutUserEmail, email),
	}

	sum, err := s.repos.Orders.Summary(ctx, order.ID, email)
	switch {
	case err == nil:
		info.AmountOwed = sum.TotalAmount
	case !errors.Is(err, repositories.ErrNotFound):
		return PaymentInfo{}, internal("failed to load summary", err)
	}

	if info.QRCodeURL == "" {
		if url, err := s.storeQR(ctx, groupID, g.VenmoHandle); err != nil {
			s.log.Warn("payment: qr code not stored", "group_id", groupID, "error", err)
		} else if err := s.repos.Groups.Update(ctx, groupID, map[string]any{"venmo_qr_code": url}); err == nil {
			info.QRCodeURL = url
		}
	}
	return info, nil
}

func (s *PaymentService) storeQR(ctx context.Context, groupID, handle string) (string, error) {
	if s.disk == nil {
		return "", errors.New("no storage disk configured")
	}
	png, err := payment.QRCode(handle)
	if err != nil {
		return "", err
	}
	path := "qr/" + groupID + "-" + strings.TrimPrefix(payment.FormatHandle(handle), "@") + ".png"
	if err := s.disk.Put(ctx, path, png, "image/png"); err != nil {
		return "", err
	}
	return s.disk.URL(path), nil
}
