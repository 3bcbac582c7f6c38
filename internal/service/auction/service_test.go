package auction

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/dto"
	"github.com/Additional-Code/buyerdesk/internal/entity"
	"github.com/Additional-Code/buyerdesk/internal/notification"
	"github.com/Additional-Code/buyerdesk/internal/repository/mocks"
	"github.com/Additional-Code/buyerdesk/internal/storage"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Invitation
}

func (r *recordingNotifier) AuctionCreated(_ context.Context, inv notification.Invitation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, inv)
}

type fixture struct {
	svc      *Service
	auctions *mocks.Store[entity.Auction]
	notifier *recordingNotifier
	dir      string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		App:     config.App{BaseURL: "https://api.example.com", FrontendURL: "https://portal.example.com"},
		Storage: config.Storage{Driver: "local", Dir: dir, MaxFiles: 10},
	}
	auctions := &mocks.Store[entity.Auction]{}
	notifier := &recordingNotifier{}
	uploader := storage.NewUploader(storage.NewLocal(dir), cfg, zap.NewNop()).
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) })
	svc := NewService(Params{
		Auctions: auctions,
		Uploader: uploader,
		Notifier: notifier,
		Config:   cfg,
		Logger:   zap.NewNop(),
	})
	return fixture{svc: svc, auctions: auctions, notifier: notifier, dir: dir}
}

func textUpload(name, body string) storage.Upload {
	return storage.Upload{
		Name: name,
		Size: int64(len(body)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func auctionRequest(emails ...string) dto.AuctionRequest {
	return dto.AuctionRequest{
		AuctionTermsRequest: dto.AuctionTermsRequest{
			Name:             "Cement supply",
			StartingPrice:    "1000",
			CompanyBuyerName: "Acme",
		},
		UserID:         "buyer-1",
		SuppliersEmail: emails,
	}
}

func TestCreateInvitesEverySupplierOnce(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	var stored *entity.Auction
	f.auctions.On("Insert", mock.Anything, mock.AnythingOfType("*entity.Auction")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*entity.Auction) }).
		Return(id, nil)

	auction, err := f.svc.Create(context.Background(),
		auctionRequest("a@s.co", "b@s.co", "c@s.co"),
		[]storage.Upload{textUpload("spec.pdf", "pdf")}, "buyer-1")
	require.NoError(t, err)

	assert.Equal(t, id, auction.ID)
	require.Len(t, stored.Lines, 3)
	for _, line := range stored.Lines {
		assert.Equal(t, entity.SupplierPending, line.SupplierStatus)
		assert.Equal(t, "Cement supply", line.Name)
	}
	assert.Equal(t, entity.BuyerPublished, stored.BuyerStatus)
	require.Len(t, stored.DocumentPath, 1)
	assert.Equal(t, "uploads/1700000000000--spec.pdf", stored.DocumentPath[0].Path)

	require.Len(t, f.notifier.sent, 1)
	inv := f.notifier.sent[0]
	assert.Equal(t, []string{"a@s.co", "b@s.co", "c@s.co"}, inv.Recipients)
	assert.Equal(t, "https://portal.example.com", inv.Link)
	assert.Equal(t, id.Hex(), inv.AuctionID)
}

func TestCreateDeduplicatesEmails(t *testing.T) {
	f := newFixture(t)
	var stored *entity.Auction
	f.auctions.On("Insert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*entity.Auction) }).
		Return(primitive.NewObjectID(), nil)

	_, err := f.svc.Create(context.Background(), auctionRequest(" A@s.co", "a@s.co", "b@s.co"), nil, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@s.co", "b@s.co"}, stored.Recipients())
}

func TestCreateRollsBackUploadsWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.auctions.On("Insert", mock.Anything, mock.Anything).Return(primitive.NilObjectID, errors.New("db down"))

	_, err := f.svc.Create(context.Background(), auctionRequest("a@s.co"),
		[]storage.Upload{textUpload("spec.pdf", "pdf")}, "buyer-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindInternal, errorbank.From(err).Kind())
	assert.Empty(t, f.notifier.sent)

	_, statErr := storage.NewLocal(f.dir).Get(context.Background(), "1700000000000--spec.pdf")
	assert.ErrorIs(t, statErr, storage.ErrNotExist)
}

func TestCreateDraftSendsNothing(t *testing.T) {
	f := newFixture(t)
	var stored *entity.Auction
	f.auctions.On("Insert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*entity.Auction) }).
		Return(primitive.NewObjectID(), nil)

	req := dto.AuctionDraftRequest{
		AuctionTermsRequest: dto.AuctionTermsRequest{Name: "Steel"},
		UserID:              "buyer-1",
		SuppliersEmail:      []string{"a@s.co"},
	}
	_, err := f.svc.CreateDraft(context.Background(), req, nil, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, entity.BuyerDraft, stored.BuyerStatus)
	assert.Empty(t, f.notifier.sent)
}

func TestEditAddsOnlyNewSuppliers(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	current := &entity.Auction{
		ID:          id,
		UserID:      "buyer-1",
		BuyerStatus: entity.BuyerPublished,
		Lines:       []entity.AuctionLine{{SupplierEmail: "a@s.co", SupplierStatus: entity.SupplierAccepted}},
	}
	f.auctions.On("FindByID", mock.Anything, id).Return(current, nil)
	f.auctions.On("UpdateWhere", mock.Anything, bson.M{"_id": id}, mock.MatchedBy(func(u bson.M) bool {
		each := u["$push"].(bson.M)["auctions"].(bson.M)["$each"].([]entity.AuctionLine)
		return len(each) == 1 && each[0].SupplierEmail == "b@s.co" && each[0].SupplierStatus == entity.SupplierPending
	})).Return(nil)

	req := dto.AuctionEditRequest{
		AuctionTermsRequest: dto.AuctionTermsRequest{Name: "Cement supply"},
		SuppliersEmail:      []string{"a@s.co", "B@s.co"},
	}
	res, err := f.svc.Edit(context.Background(), id.Hex(), req, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b@s.co"}, res.Added)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, []string{"b@s.co"}, f.notifier.sent[0].Recipients)
}

func TestEditRewritesTermsOnEveryLine(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.auctions.On("FindByID", mock.Anything, id).Return(&entity.Auction{ID: id, UserID: "buyer-1", BuyerStatus: entity.BuyerDraft}, nil)
	f.auctions.On("UpdateFields", mock.Anything, id, mock.MatchedBy(func(set bson.M) bool {
		return set["name"] == "Rebar" && set["auctions.$[].name"] == "Rebar" &&
			set["link"] == "https://x" && set["buyer_status"] == entity.BuyerPublished
	})).Return(nil)

	req := dto.AuctionEditRequest{
		AuctionTermsRequest: dto.AuctionTermsRequest{Name: "Rebar"},
		Link:                "https://x",
		BuyerStatus:         "published",
	}
	res, err := f.svc.Edit(context.Background(), id.Hex(), req, "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	f.auctions.AssertExpectations(t)
}

func TestEditRejectsReopeningClosedAuction(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.auctions.On("FindByID", mock.Anything, id).Return(&entity.Auction{ID: id, UserID: "buyer-1", BuyerStatus: entity.BuyerClosed}, nil)

	req := dto.AuctionEditRequest{AuctionTermsRequest: dto.AuctionTermsRequest{Name: "x"}, BuyerStatus: "draft"}
	_, err := f.svc.Edit(context.Background(), id.Hex(), req, "buyer-1")
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func draftWithLines(id primitive.ObjectID, emails ...string) *entity.Auction {
	a := &entity.Auction{ID: id, UserID: "buyer-1", BuyerStatus: entity.BuyerDraft}
	a.Name = "Rebar"
	for _, e := range emails {
		a.Lines = append(a.Lines, entity.AuctionLine{SupplierEmail: e, SupplierStatus: entity.SupplierPending})
	}
	return a
}

func TestEditPublishingDraftInvitesItsSuppliers(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.auctions.On("FindByID", mock.Anything, id).Return(draftWithLines(id, "a@s.co", "b@s.co"), nil)
	f.auctions.On("UpdateFields", mock.Anything, id, mock.Anything).Return(nil)

	req := dto.AuctionEditRequest{
		AuctionTermsRequest: dto.AuctionTermsRequest{Name: "Rebar"},
		BuyerStatus:         "published",
	}
	_, err := f.svc.Edit(context.Background(), id.Hex(), req, "buyer-1")
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.ElementsMatch(t, []string{"a@s.co", "b@s.co"}, f.notifier.sent[0].Recipients)
	assert.Equal(t, id.Hex(), f.notifier.sent[0].AuctionID)
}

func TestEditPublishingDraftWithNewSuppliersInvitesEveryone(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	first := draftWithLines(id, "a@s.co")
	after := draftWithLines(id, "a@s.co", "c@s.co")
	f.auctions.On("FindByID", mock.Anything, id).Return(first, nil).Once()
	f.auctions.On("FindByID", mock.Anything, id).Return(after, nil).Once()
	f.auctions.On("UpdateWhere", mock.Anything, bson.M{"_id": id}, mock.Anything).Return(nil)

	req := dto.AuctionEditRequest{
		AuctionTermsRequest: dto.AuctionTermsRequest{Name: "Rebar"},
		BuyerStatus:         "published",
		SuppliersEmail:      []string{"c@s.co"},
	}
	res, err := f.svc.Edit(context.Background(), id.Hex(), req, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c@s.co"}, res.Added)

	require.Len(t, f.notifier.sent, 1)
	assert.ElementsMatch(t, []string{"a@s.co", "c@s.co"}, f.notifier.sent[0].Recipients)
}

func TestEditDraftStaysQuiet(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.auctions.On("FindByID", mock.Anything, id).Return(draftWithLines(id, "a@s.co"), nil)
	f.auctions.On("UpdateFields", mock.Anything, id, mock.Anything).Return(nil)

	req := dto.AuctionEditRequest{AuctionTermsRequest: dto.AuctionTermsRequest{Name: "Rebar v2"}}
	_, err := f.svc.Edit(context.Background(), id.Hex(), req, "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestEditByAnotherUserIsForbidden(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.auctions.On("FindByID", mock.Anything, id).Return(draftWithLines(id, "a@s.co"), nil)

	req := dto.AuctionEditRequest{AuctionTermsRequest: dto.AuctionTermsRequest{Name: "x"}, BuyerStatus: "published"}
	_, err := f.svc.Edit(context.Background(), id.Hex(), req, "someone-else")

	assert.Equal(t, errorbank.KindForbidden, errorbank.From(err).Kind())
	f.auctions.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	f.auctions.AssertNotCalled(t, "UpdateWhere", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.sent)
}

func TestSetSupplierStatus(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.auctions.On("FindByID", mock.Anything, id).Return(&entity.Auction{
		ID:    id,
		Lines: []entity.AuctionLine{{SupplierEmail: "a@s.co", SupplierStatus: entity.SupplierPending}},
	}, nil)
	f.auctions.On("UpdateWhere", mock.Anything,
		bson.M{"_id": id, "auctions.supplier_email": "a@s.co"},
		mock.MatchedBy(func(u bson.M) bool {
			return u["$set"].(bson.M)["auctions.$.supplier_status"] == entity.SupplierAccepted
		}),
	).Return(nil)

	line, err := f.svc.SetSupplierStatus(context.Background(), id.Hex(), "A@s.co", entity.SupplierAccepted, "supplier")
	require.NoError(t, err)
	assert.Equal(t, entity.SupplierAccepted, line.SupplierStatus)
}

func TestSetSupplierStatusUnknownSupplier(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.auctions.On("FindByID", mock.Anything, id).Return(&entity.Auction{ID: id}, nil)

	_, err := f.svc.SetSupplierStatus(context.Background(), id.Hex(), "z@s.co", entity.SupplierAccepted, "supplier")
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestListBySupplierFiltersLines(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.auctions.On("Find", mock.Anything, bson.M{"auctions.supplier_email": "a@s.co"}, bson.M(nil)).Return([]entity.Auction{{
		ID:   id,
		Link: "https://portal",
		Lines: []entity.AuctionLine{
			{SupplierEmail: "a@s.co"},
			{SupplierEmail: "b@s.co"},
		},
	}}, nil)

	got, err := f.svc.ListBySupplier(context.Background(), "a@s.co")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].AuctionID)
	require.Len(t, got[0].Lines, 1)
	assert.Equal(t, "a@s.co", got[0].Lines[0].SupplierEmail)
}

func TestListByBuyerEmpty(t *testing.T) {
	f := newFixture(t)
	f.auctions.On("Find", mock.Anything, bson.M{"userId": "nobody"}, bson.M(nil)).Return([]entity.Auction{}, nil)

	_, err := f.svc.ListByBuyer(context.Background(), "nobody")
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}
