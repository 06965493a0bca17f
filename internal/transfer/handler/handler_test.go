package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	landmodels "malpot/internal/land/models"
	"malpot/internal/transfer/handler/mocks"
	"malpot/internal/transfer/models"
	transferservice "malpot/internal/transfer/service"
	usermodels "malpot/internal/users/models"
	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
	"malpot/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/transfer-mocks.go -package=mocks Service
type TransferHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	officer id.UserID
}

func TestTransferHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransferHandlerSuite))
}

func (s *TransferHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	s.officer = id.NewUserID()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func applyBody(landID id.LandID) map[string]any {
	doc := func(name string) map[string]string {
		return map[string]string{"public_id": "malpot/transfer-documents/" + name, "url": "https://cdn.example.com/" + name + ".pdf"}
	}
	return map[string]any{
		"land_id":        landID.String(),
		"previous_owner": map[string]string{"name": "A", "national_id": "111"},
		"new_owner":      map[string]string{"name": "B", "national_id": "222"},
		"documents": map[string]any{
			"citizenship":   doc("citizenship"),
			"sale_deed":     doc("sale-deed"),
			"tax_clearance": doc("tax-clearance"),
		},
	}
}

func (s *TransferHandlerSuite) asOfficer(req *http.Request) *http.Request {
	return testutil.WithAuth(req, s.officer.String(), usermodels.RoleOfficer)
}

func (s *TransferHandlerSuite) TestHandleApply() {
	s.Run("returns 201 with the pending transfer", func() {
		landID := id.NewLandID()
		created := &models.Transfer{ID: id.NewTransferID(), LandID: landID, Status: models.StatusPending}
		s.service.EXPECT().Apply(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd transferservice.ApplyCommand) (*models.Transfer, error) {
				s.Equal(landID, cmd.LandID)
				s.Equal(id.NationalID("111"), cmd.PreviousOwner.NationalID)
				s.Equal(landmodels.Owner{Name: "B", NationalID: "222"}, cmd.NewOwner)
				s.True(cmd.Documents.SaleDeed.Present())
				return created, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", applyBody(landID)))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[TransferResponse](s.T(), rr)
		s.True(resp.Success)
		s.Equal(created.ID, resp.Transfer.ID)
		s.Equal(models.StatusPending, resp.Transfer.Status)
	})

	s.Run("missing new owner still reaches the workflow", func() {
		body := applyBody(id.NewLandID())
		delete(body, "new_owner")
		s.service.EXPECT().Apply(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeMismatch, "previous owner does not match land record"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", body))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeMismatch))
	})

	s.Run("malformed land id is a bad request", func() {
		body := applyBody(id.NewLandID())
		body["land_id"] = "L1"

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", body))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("missing previous owner national id reaches the workflow", func() {
		body := applyBody(id.NewLandID())
		body["previous_owner"] = map[string]string{"name": "A"}
		s.service.EXPECT().
			Apply(gomock.Any(), gomock.Cond(func(cmd transferservice.ApplyCommand) bool {
				return cmd.PreviousOwner.NationalID == ""
			})).
			Return(nil, dErrors.New(dErrors.CodeMismatch, "previous owner does not match land record"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", body))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeMismatch))
	})

	s.Run("unknown fields are refused", func() {
		body := applyBody(id.NewLandID())
		body["status"] = "Approved"

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", body))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("locked land maps to 409", func() {
		s.service.EXPECT().Apply(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "transfer already in progress for this land"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", applyBody(id.NewLandID())))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))
	})
}

func (s *TransferHandlerSuite) TestHandleApprove() {
	s.Run("officer approves with their own id as reviewer", func() {
		transferID := id.NewTransferID()
		s.service.EXPECT().Approve(gomock.Any(), transferID, s.officer).
			Return(&models.Transfer{ID: transferID, Status: models.StatusApproved}, nil)

		req := s.asOfficer(testutil.NewRequest(s.T(), http.MethodPost, "/transfers/"+transferID.String()+"/approve"))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[TransferResponse](s.T(), rr)
		s.Equal(models.StatusApproved, resp.Transfer.Status)
	})

	s.Run("citizens are forbidden", func() {
		req := testutil.WithAuth(
			testutil.NewRequest(s.T(), http.MethodPost, "/transfers/"+id.NewTransferID().String()+"/approve"),
			id.NewUserID().String(), usermodels.RoleCitizen)

		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("already processed maps to 409", func() {
		s.service.EXPECT().Approve(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "transfer already processed"))

		req := s.asOfficer(testutil.NewRequest(s.T(), http.MethodPost, "/transfers/"+id.NewTransferID().String()+"/approve"))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))
	})

	s.Run("storage failure maps to 503", func() {
		s.service.EXPECT().Approve(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "transfer decision could not be stored; no changes were applied"))

		req := s.asOfficer(testutil.NewRequest(s.T(), http.MethodPost, "/transfers/"+id.NewTransferID().String()+"/approve"))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
	})
}

func (s *TransferHandlerSuite) TestHandleReject() {
	s.Run("passes the trimmed reason", func() {
		transferID := id.NewTransferID()
		s.service.EXPECT().Reject(gomock.Any(), transferID, s.officer, "sale deed unsigned").
			Return(&models.Transfer{ID: transferID, Status: models.StatusRejected, RejectionReason: "sale deed unsigned"}, nil)

		req := s.asOfficer(testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/transfers/"+transferID.String()+"/reject", map[string]string{"reason": "  sale deed unsigned "}))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[TransferResponse](s.T(), rr)
		s.Equal("Transfer rejected", resp.Message)
	})

	s.Run("unknown transfer is 404", func() {
		s.service.EXPECT().Reject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "transfer not found"))

		req := s.asOfficer(testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/transfers/"+id.NewTransferID().String()+"/reject", map[string]string{}))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *TransferHandlerSuite) TestHandleHistory() {
	s.Run("returns records with reviewers", func() {
		landID := id.NewLandID()
		reviewer := id.NewUserID()
		verifiedAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
		s.service.EXPECT().History(gomock.Any(), landID).Return([]transferservice.TransferRecord{
			{
				Transfer: &models.Transfer{ID: id.NewTransferID(), LandID: landID, Status: models.StatusApproved, VerifiedBy: &reviewer, VerifiedAt: &verifiedAt},
				Reviewer: &transferservice.ReviewerInfo{ID: reviewer, Name: "Officer Sita", Contact: "sita@malpot.gov.np"},
			},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/land/"+landID.String()+"/transfers"))

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		transfers := (*resp)["transfers"].([]any)
		s.Require().Len(transfers, 1)
		record := transfers[0].(map[string]any)
		s.Equal("Approved", record["status"])
		s.Equal("Officer Sita", record["reviewer"].(map[string]any)["name"])
	})

	s.Run("empty history is an empty list", func() {
		s.service.EXPECT().History(gomock.Any(), gomock.Any()).Return([]transferservice.TransferRecord{}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/land/"+id.NewLandID().String()+"/transfers"))

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONHasKey(s.T(), rr, "transfers")
	})
}

func (s *TransferHandlerSuite) TestHandleGet() {
	s.Run("malformed id is a bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/transfers/nope"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("returns the transfer", func() {
		transferID := id.NewTransferID()
		s.service.EXPECT().Get(gomock.Any(), transferID).Return(&models.Transfer{ID: transferID, Status: models.StatusPending}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/transfers/"+transferID.String()))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "Pending")
	})
}
