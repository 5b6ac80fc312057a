package groups_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chikahq/partnerhub/internal/app/features/groups"
	"github.com/chikahq/partnerhub/internal/app/system/partner"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"github.com/chikahq/partnerhub/internal/testutil"
	"go.uber.org/zap"
)

func futureEndsAt() time.Time {
	return time.Now().UTC().Add(72 * time.Hour)
}

func newHandler(t *testing.T) (*groups.Handler, *partner.Service, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := partner.NewService(db.Client(), db, zap.NewNop(), partner.Config{})
	return groups.NewHandler(svc, zap.NewNop()), svc, testutil.NewFixtures(t, db)
}

func TestServeMyGroup(t *testing.T) {
	h, svc, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateProfile(ctx, testutil.UID("a"))
	b := fx.CreateProfile(ctx, testutil.UID("b"))
	g := fx.CreateGroup(ctx, futureEndsAt(), a, b)
	if err := svc.SetContinueWith(ctx, a.UID, b.UID); err != nil {
		t.Fatalf("SetContinueWith: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeMyGroup(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/groups/me", a.UID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Group      *models.PartnerGroup `json:"group"`
		MyContinue string               `json:"my_continue_with"`
	}
	testutil.DecodeResponse(t, rec, &resp)
	if resp.Group == nil || resp.Group.ID != g.ID {
		t.Fatalf("unexpected group in response: %+v", resp.Group)
	}
	if resp.MyContinue != b.UID {
		t.Errorf("my_continue_with = %q; want %q", resp.MyContinue, b.UID)
	}
}

func TestServeMyGroup_NoGroup(t *testing.T) {
	h, _, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := testutil.UID("loner")
	fx.CreateProfile(ctx, uid)

	rec := httptest.NewRecorder()
	h.ServeMyGroup(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/groups/me", uid))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", rec.Code)
	}
}

func TestServeLeave(t *testing.T) {
	h, svc, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateProfile(ctx, testutil.UID("a"))
	b := fx.CreateProfile(ctx, testutil.UID("b"))
	c := fx.CreateProfile(ctx, testutil.UID("c"))
	fx.CreateGroup(ctx, futureEndsAt(), a, b, c)

	rec := httptest.NewRecorder()
	h.ServeLeave(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/groups/leave", c.UID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	u, err := svc.Users().GetByUID(ctx, c.UID)
	if err != nil {
		t.Fatalf("GetByUID: %v", err)
	}
	if u.PartnerGroupID != "" {
		t.Errorf("group ref not cleared: %q", u.PartnerGroupID)
	}
}

func TestServeLeave_NotInGroup(t *testing.T) {
	h, _, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := testutil.UID("loner")
	fx.CreateProfile(ctx, uid)

	rec := httptest.NewRecorder()
	h.ServeLeave(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/groups/leave", uid))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", rec.Code)
	}
}

func TestServeContinueWith(t *testing.T) {
	h, svc, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateProfile(ctx, testutil.UID("a"))
	b := fx.CreateProfile(ctx, testutil.UID("b"))
	fx.CreateGroup(ctx, futureEndsAt(), a, b)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/groups/continue-with", a.UID,
		map[string]string{"partner_uid": b.UID})
	h.ServeContinueWith(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	u, err := svc.Users().GetByUID(ctx, a.UID)
	if err != nil {
		t.Fatalf("GetByUID: %v", err)
	}
	if u.ContinueWith != b.UID {
		t.Errorf("continue_with = %q; want %q", u.ContinueWith, b.UID)
	}
}

func TestServeContinueWith_MissingPartner(t *testing.T) {
	h, _, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateProfile(ctx, testutil.UID("a"))
	b := fx.CreateProfile(ctx, testutil.UID("b"))
	fx.CreateGroup(ctx, futureEndsAt(), a, b)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/groups/continue-with", a.UID,
		map[string]string{"partner_uid": ""})
	h.ServeContinueWith(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", rec.Code)
	}
}
