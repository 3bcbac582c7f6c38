package auction

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/dto"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/notification"
	"github.com/Additional-Code/buyerdesk/internal/repository"
	"github.com/Additional-Code/buyerdesk/internal/service"
	"github.com/Additional-Code/buyerdesk/internal/storage"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/buyerdesk/service/auction")

// Service encapsulates business logic around auctions and supplier invitations.
type Service struct {
	auctions    repository.Store[entity.Auction]
	uploader    *storage.Uploader
	notifier    notification.Notifier
	frontendURL string
	logger      *zap.Logger
	now         func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Auctions repository.Store[entity.Auction]
	Uploader *storage.Uploader
	Notifier notification.Notifier
	Config   config.Config
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		auctions:    p.Auctions,
		uploader:    p.Uploader,
		notifier:    p.Notifier,
		frontendURL: p.Config.App.FrontendURL,
		logger:      p.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func notExist(id string) string {
	return fmt.Sprintf("Auction with id %s does not exist", id)
}

// ListByBuyer returns the auctions published by a buyer.
func (s *Service) ListByBuyer(ctx context.Context, userID string) ([]entity.Auction, error) {
	ctx, span := serviceTracer.Start(ctx, "AuctionService.ListByBuyer", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	auctions, err := s.auctions.Find(ctx, bson.M{"userId": userID}, nil)
	if err != nil {
		return nil, service.Store(span, err, service.NoRecords, "failed to list auctions")
	}
	if len(auctions) == 0 {
		return nil, errorbank.NotFound(service.NoRecords)
	}
	return auctions, nil
}

// ListBySupplier returns, per auction, the lines addressed to email.
func (s *Service) ListBySupplier(ctx context.Context, email string) ([]dto.SupplierAuction, error) {
	emails := dto.NormalizeEmails([]string{email})
	if len(emails) == 0 {
		return nil, errorbank.BadRequest("email is required")
	}
	email = emails[0]

	ctx, span := serviceTracer.Start(ctx, "AuctionService.ListBySupplier")
	defer span.End()

	auctions, err := s.auctions.Find(ctx, bson.M{"auctions.supplier_email": email}, nil)
	if err != nil {
		return nil, service.Store(span, err, service.NoRecords, "failed to list auctions")
	}
	if len(auctions) == 0 {
		return nil, errorbank.NotFound(service.NoRecords)
	}
	return dto.NewSupplierAuctions(auctions, email), nil
}

// Get loads one auction.
func (s *Service) Get(ctx context.Context, id string) (*entity.Auction, error) {
	oid, err := service.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "AuctionService.Get", trace.WithAttributes(attribute.String("auction.id", id)))
	defer span.End()

	auction, err := s.auctions.FindByID(ctx, oid)
	if err != nil {
		return nil, service.Store(span, err, notExist(id), "failed to load auction")
	}
	return auction, nil
}

// Create stores an auction with one line per supplier and, once
// published, invites every supplier with a single blind-copied email.
func (s *Service) Create(ctx context.Context, req dto.AuctionRequest, uploads []storage.Upload, actor string) (*entity.Auction, error) {
	status := entity.BuyerStatus(req.BuyerStatus)
	if status == "" {
		status = entity.BuyerPublished
	}
	if status != entity.BuyerDraft && status != entity.BuyerPublished {
		return nil, errorbank.BadRequest(fmt.Sprintf("auction cannot be created as %s", status))
	}
	emails := dto.NormalizeEmails(req.SuppliersEmail)
	if len(emails) == 0 {
		return nil, errorbank.BadRequest("suppliers_email is required")
	}

	auction, err := s.create(ctx, req.AuctionTermsRequest, req.UserID, req.Link, status, emails, uploads, actor)
	if err != nil {
		return nil, err
	}
	if status == entity.BuyerPublished {
		s.notifier.AuctionCreated(ctx, s.invitation(auction, auction.Recipients()))
	}
	return auction, nil
}

// CreateDraft stores an auction in draft state without notifying anyone.
func (s *Service) CreateDraft(ctx context.Context, req dto.AuctionDraftRequest, uploads []storage.Upload, actor string) (*entity.Auction, error) {
	emails := dto.NormalizeEmails(req.SuppliersEmail)
	return s.create(ctx, req.AuctionTermsRequest, req.UserID, req.Link, entity.BuyerDraft, emails, uploads, actor)
}

func (s *Service) create(ctx context.Context, termsReq dto.AuctionTermsRequest, userID, link string, status entity.BuyerStatus, emails []string, uploads []storage.Upload, actor string) (*entity.Auction, error) {
	terms, err := termsReq.Terms()
	if err != nil {
		return nil, errorbank.BadRequest(err.Error())
	}

	ctx, span := serviceTracer.Start(ctx, "AuctionService.Create", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("auction.status", string(status)),
		attribute.Int("auction.suppliers", len(emails)),
		attribute.Int("auction.documents", len(uploads)),
	))
	defer span.End()

	docs, err := s.uploader.Save(ctx, uploads)
	if err != nil {
		return nil, service.Upload(span, err)
	}

	now := s.now()
	auction := &entity.Auction{
		AuctionTerms: terms,
		UserID:       userID,
		Link:         link,
		BuyerStatus:  status,
		Lines:        newLines(terms, emails),
		DocumentPath: docs,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.auctions.Insert(ctx, auction)
	if err != nil {
		s.uploader.Rollback(context.WithoutCancel(ctx), docs)
		return nil, service.Store(span, err, service.NoRecords, "failed to create auction")
	}
	auction.ID = id
	return auction, nil
}

func newLines(terms entity.AuctionTerms, emails []string) []entity.AuctionLine {
	lines := make([]entity.AuctionLine, 0, len(emails))
	for _, email := range emails {
		lines = append(lines, entity.AuctionLine{
			AuctionTerms:   terms,
			SupplierEmail:  email,
			SupplierStatus: entity.SupplierPending,
		})
	}
	return lines
}

func (s *Service) invitation(a *entity.Auction, recipients []string) notification.Invitation {
	return notification.Invitation{
		AuctionID:        a.ID.Hex(),
		AuctionName:      a.Name,
		CompanyBuyerName: a.CompanyBuyerName,
		Link:             s.frontendURL,
		Recipients:       recipients,
	}
}

// EditResult reports what an edit did.
type EditResult struct {
	Auction *entity.Auction
	// Added lists suppliers invited by this edit; empty when the terms were rewritten.
	Added []string
}

// Edit invites the suppliers listed in the request, or, when none are
// listed, rewrites the shared terms on the auction and all of its lines.
// Only the owning buyer may edit. Publishing a draft invites every
// supplier on it.
func (s *Service) Edit(ctx context.Context, id string, req dto.AuctionEditRequest, actor string) (*EditResult, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	terms, err := req.Terms()
	if err != nil {
		return nil, errorbank.BadRequest(err.Error())
	}

	if actor != current.UserID {
		return nil, errorbank.Forbidden("Only the auction owner can edit it")
	}

	ctx, span := serviceTracer.Start(ctx, "AuctionService.Edit", trace.WithAttributes(attribute.String("auction.id", id)))
	defer span.End()

	status := current.BuyerStatus
	if req.BuyerStatus != "" {
		next := entity.BuyerStatus(req.BuyerStatus)
		if err := current.BuyerStatus.TransitionTo(next); err != nil {
			return nil, service.Transition(err)
		}
		status = next
	}
	publishing := current.BuyerStatus == entity.BuyerDraft && status == entity.BuyerPublished
	audit := bson.M{"buyer_status": status, "updatedBy": actor, "updatedAt": s.now()}

	if len(req.SuppliersEmail) > 0 {
		added := make([]string, 0, len(req.SuppliersEmail))
		for _, email := range dto.NormalizeEmails(req.SuppliersEmail) {
			if !current.HasSupplier(email) {
				added = append(added, email)
			}
		}
		if len(added) == 0 {
			return nil, errorbank.Conflict("Suppliers are already invited to the auction")
		}
		err := s.auctions.UpdateWhere(ctx,
			bson.M{"_id": current.ID},
			bson.M{"$push": bson.M{"auctions": bson.M{"$each": newLines(terms, added)}}, "$set": audit},
		)
		if err != nil {
			return nil, service.Store(span, err, notExist(id), "failed to add suppliers")
		}
		updated, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		switch {
		case publishing:
			s.invite(ctx, updated, updated.Recipients())
		case status == entity.BuyerPublished:
			s.invite(ctx, updated, added)
		}
		return &EditResult{Auction: updated, Added: added}, nil
	}

	set := termsSet("", terms)
	for k, v := range termsSet("auctions.$[].", terms) {
		set[k] = v
	}
	for k, v := range audit {
		set[k] = v
	}
	set["link"] = req.Link
	if err := s.auctions.UpdateFields(ctx, current.ID, set); err != nil {
		return nil, service.Store(span, err, notExist(id), "failed to update auction")
	}
	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if publishing {
		s.invite(ctx, updated, updated.Recipients())
	}
	return &EditResult{Auction: updated, Added: []string{}}, nil
}

// invite sends one invitation covering recipients, if there are any.
func (s *Service) invite(ctx context.Context, a *entity.Auction, recipients []string) {
	if len(recipients) == 0 {
		return
	}
	s.notifier.AuctionCreated(ctx, s.invitation(a, recipients))
}

func termsSet(prefix string, t entity.AuctionTerms) bson.M {
	return bson.M{
		prefix + "name":               t.Name,
		prefix + "owner":              t.Owner,
		prefix + "description":        t.Description,
		prefix + "start_date":         t.StartDate,
		prefix + "end_date":           t.EndDate,
		prefix + "starting_price":     t.StartingPrice,
		prefix + "cost_center":        t.CostCenter,
		prefix + "currency":           t.Currency,
		prefix + "budget":             t.Budget,
		prefix + "minimum_step":       t.MinimumStep,
		prefix + "cool_down_period":   t.CoolDownPeriod,
		prefix + "item":               t.Item,
		prefix + "company_buyer_name": t.CompanyBuyerName,
	}
}

// SetSupplierStatus records a supplier's answer on its line.
func (s *Service) SetSupplierStatus(ctx context.Context, id, email string, next entity.SupplierStatus, actor string) (*entity.AuctionLine, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	normalized := dto.NormalizeEmails([]string{email})
	if len(normalized) == 0 {
		return nil, errorbank.BadRequest("email is required")
	}
	email = normalized[0]

	var line *entity.AuctionLine
	for i := range current.Lines {
		if current.Lines[i].SupplierEmail == email {
			line = &current.Lines[i]
			break
		}
	}
	if line == nil {
		return nil, errorbank.NotFound(fmt.Sprintf("Supplier %s is not invited to auction %s", email, id))
	}
	if err := line.SupplierStatus.TransitionTo(next); err != nil {
		return nil, service.Transition(err)
	}

	ctx, span := serviceTracer.Start(ctx, "AuctionService.SetSupplierStatus", trace.WithAttributes(
		attribute.String("auction.id", id),
		attribute.String("supplier.status", string(next)),
	))
	defer span.End()

	err = s.auctions.UpdateWhere(ctx,
		bson.M{"_id": current.ID, "auctions.supplier_email": email},
		bson.M{"$set": bson.M{"auctions.$.supplier_status": next, "updatedBy": actor, "updatedAt": s.now()}},
	)
	if err != nil {
		return nil, service.Store(span, err, notExist(id), "failed to update supplier status")
	}
	line.SupplierStatus = next
	return line, nil
}
