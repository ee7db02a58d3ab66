package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/api/middleware"
	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
)

type stubListingService struct {
	createFn      func(ctx context.Context, p *domain.Principal, in ports.CreateListingInput) (*domain.Listing, error)
	getFn         func(ctx context.Context, id string) (*domain.Listing, error)
	listFn        func(ctx context.Context) ([]*domain.Listing, error)
	updateFn      func(ctx context.Context, p *domain.Principal, id string, in ports.UpdateListingInput) (*domain.Listing, error)
	deleteFn      func(ctx context.Context, p *domain.Principal, id string) error
	transitionFn  func(ctx context.Context, p *domain.Principal, id string, next domain.ListingStatus) (*domain.Listing, error)
	listAllFn     func(ctx context.Context) ([]*domain.Listing, error)
	listPendingFn func(ctx context.Context) ([]*domain.Listing, error)
}

func (s *stubListingService) Create(ctx context.Context, p *domain.Principal, in ports.CreateListingInput) (*domain.Listing, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubListingService) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	return s.getFn(ctx, id)
}

func (s *stubListingService) ListApproved(ctx context.Context) ([]*domain.Listing, error) {
	return s.listFn(ctx)
}

func (s *stubListingService) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	return s.listAllFn(ctx)
}

func (s *stubListingService) ListPending(ctx context.Context) ([]*domain.Listing, error) {
	return s.listPendingFn(ctx)
}

func (s *stubListingService) Update(ctx context.Context, p *domain.Principal, id string, in ports.UpdateListingInput) (*domain.Listing, error) {
	return s.updateFn(ctx, p, id, in)
}

func (s *stubListingService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

func (s *stubListingService) Transition(ctx context.Context, p *domain.Principal, id string, next domain.ListingStatus) (*domain.Listing, error) {
	return s.transitionFn(ctx, p, id, next)
}

type stubImageStore struct {
	saveFn  func(files []*multipart.FileHeader) ([]string, error)
	removed [][]string
}

func (s *stubImageStore) Save(files []*multipart.FileHeader) ([]string, error) {
	if s.saveFn != nil {
		return s.saveFn(files)
	}
	return nil, nil
}

func (s *stubImageStore) Remove(refs []string) {
	s.removed = append(s.removed, refs)
}

// multipartListing builds a multipart create request with the given scalar
// fields and one image per name in files.
func multipartListing(t *testing.T, fields map[string]string, files []string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, name := range files {
		fw, err := w.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/products/create", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func principalCtx(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, p *domain.Principal) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.PrincipalKey, p)
	return c
}

var testOwner = &domain.Principal{ID: "u1", Role: domain.RoleUser, Name: "alice", Email: "alice@example.com"}

func TestListingHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	images := &stubImageStore{
		saveFn: func(files []*multipart.FileHeader) ([]string, error) {
			if len(files) != 1 {
				t.Fatalf("expected 1 file, got %d", len(files))
			}
			return []string{"/images/abc.jpg"}, nil
		},
	}
	svc := &stubListingService{
		createFn: func(ctx context.Context, p *domain.Principal, in ports.CreateListingInput) (*domain.Listing, error) {
			if p.ID != "u1" {
				t.Fatalf("unexpected principal %q", p.ID)
			}
			if in.Name != "City apartment" || in.City != "Austin" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if len(in.Images) != 1 || in.Images[0] != "/images/abc.jpg" {
				t.Fatalf("image refs not forwarded: %+v", in.Images)
			}
			return &domain.Listing{
				ID:            "l1",
				Name:          in.Name,
				Status:        domain.StatusPending,
				CreatedByRole: domain.CreatedByUser,
				Images:        in.Images,
			}, nil
		},
	}
	h := NewListingHandler(svc, images)

	req := multipartListing(t, map[string]string{
		"name":        "City apartment",
		"description": "two rooms",
		"city":        "Austin",
		"phone_no":    "5551234",
	}, []string{"photo.jpg"})
	rec := httptest.NewRecorder()

	if err := h.Create(principalCtx(e, req, rec, testOwner)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	listing, ok := resp["listing"].(map[string]any)
	if !ok || listing["status"] != string(domain.StatusPending) {
		t.Fatalf("unexpected listing payload: %+v", resp)
	}
}

func TestListingHandler_Create_RequiresAnImage(t *testing.T) {
	e := newTestEcho()
	images := &stubImageStore{
		saveFn: func(files []*multipart.FileHeader) ([]string, error) {
			if len(files) != 0 {
				t.Fatalf("expected empty batch, got %d", len(files))
			}
			return nil, nil
		},
	}
	svc := &stubListingService{
		createFn: func(ctx context.Context, p *domain.Principal, in ports.CreateListingInput) (*domain.Listing, error) {
			t.Fatal("service should not be called without images")
			return nil, nil
		},
	}
	h := NewListingHandler(svc, images)

	req := multipartListing(t, map[string]string{
		"name":        "City apartment",
		"description": "two rooms",
		"city":        "Austin",
		"phone_no":    "5551234",
	}, nil)
	rec := httptest.NewRecorder()

	err := h.Create(principalCtx(e, req, rec, testOwner))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestListingHandler_Create_UploadRejected(t *testing.T) {
	e := newTestEcho()
	images := &stubImageStore{
		saveFn: func(files []*multipart.FileHeader) ([]string, error) {
			return nil, domain.ErrFileTooLarge
		},
	}
	svc := &stubListingService{
		createFn: func(ctx context.Context, p *domain.Principal, in ports.CreateListingInput) (*domain.Listing, error) {
			t.Fatal("service should not be called when the upload is rejected")
			return nil, nil
		},
	}
	h := NewListingHandler(svc, images)

	req := multipartListing(t, map[string]string{
		"name":        "City apartment",
		"description": "two rooms",
		"city":        "Austin",
		"phone_no":    "5551234",
	}, []string{"huge.jpg"})
	rec := httptest.NewRecorder()

	err := h.Create(principalCtx(e, req, rec, testOwner))
	if err != domain.ErrFileTooLarge {
		t.Fatalf("expected upload error, got %v", err)
	}
}

func TestListingHandler_Create_RollsBackImagesOnServiceFailure(t *testing.T) {
	e := newTestEcho()
	images := &stubImageStore{
		saveFn: func(files []*multipart.FileHeader) ([]string, error) {
			return []string{"/images/abc.jpg"}, nil
		},
	}
	svc := &stubListingService{
		createFn: func(ctx context.Context, p *domain.Principal, in ports.CreateListingInput) (*domain.Listing, error) {
			return nil, context.DeadlineExceeded
		},
	}
	h := NewListingHandler(svc, images)

	req := multipartListing(t, map[string]string{
		"name":        "City apartment",
		"description": "two rooms",
		"city":        "Austin",
		"phone_no":    "5551234",
	}, []string{"photo.jpg"})
	rec := httptest.NewRecorder()

	if err := h.Create(principalCtx(e, req, rec, testOwner)); err == nil {
		t.Fatal("expected error")
	}
	if len(images.removed) != 1 || images.removed[0][0] != "/images/abc.jpg" {
		t.Fatalf("saved images not rolled back: %+v", images.removed)
	}
}

func TestListingHandler_Update_PartialMerge(t *testing.T) {
	e := newTestEcho()
	svc := &stubListingService{
		updateFn: func(ctx context.Context, p *domain.Principal, id string, in ports.UpdateListingInput) (*domain.Listing, error) {
			if id != "l1" {
				t.Fatalf("unexpected id %q", id)
			}
			if in.Name == nil || *in.Name != "Renamed" {
				t.Fatalf("name pointer not bound: %+v", in.Name)
			}
			if in.Description != nil || in.City != nil {
				t.Fatal("absent fields must stay nil")
			}
			if in.Status == nil || *in.Status != domain.StatusApproved {
				t.Fatalf("status not parsed: %+v", in.Status)
			}
			return &domain.Listing{ID: id, Name: *in.Name, Status: *in.Status}, nil
		},
	}
	h := NewListingHandler(svc, &stubImageStore{})

	body := strings.NewReader(`{"name":"Renamed","status":"Approved"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/products/l1", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := principalCtx(e, req, rec, testOwner)
	c.SetParamNames("id")
	c.SetParamValues("l1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListingHandler_Update_UnknownStatus(t *testing.T) {
	e := newTestEcho()
	svc := &stubListingService{
		updateFn: func(ctx context.Context, p *domain.Principal, id string, in ports.UpdateListingInput) (*domain.Listing, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewListingHandler(svc, &stubImageStore{})

	body := strings.NewReader(`{"status":"Sideways"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/products/l1", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := principalCtx(e, req, rec, testOwner)
	c.SetParamNames("id")
	c.SetParamValues("l1")

	err := h.Update(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestListingHandler_Moderate_ParsesStatus(t *testing.T) {
	e := newTestEcho()
	svc := &stubListingService{
		transitionFn: func(ctx context.Context, p *domain.Principal, id string, next domain.ListingStatus) (*domain.Listing, error) {
			if next != domain.StatusApproved {
				t.Fatalf("unexpected status %q", next)
			}
			return &domain.Listing{ID: id, Status: next}, nil
		},
	}
	h := NewListingHandler(svc, &stubImageStore{})

	body := strings.NewReader(`{"status":"Approved"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/products/admin/status/l1", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := principalCtx(e, req, rec, &domain.Principal{ID: "a1", Role: domain.RoleAdmin})
	c.SetParamNames("id")
	c.SetParamValues("l1")

	if err := h.Moderate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListingHandler_Moderate_InvalidTransitionPassesThrough(t *testing.T) {
	e := newTestEcho()
	svc := &stubListingService{
		transitionFn: func(ctx context.Context, p *domain.Principal, id string, next domain.ListingStatus) (*domain.Listing, error) {
			return nil, domain.ErrInvalidTransition
		},
	}
	h := NewListingHandler(svc, &stubImageStore{})

	body := strings.NewReader(`{"status":"Done"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/products/admin/status/l1", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := principalCtx(e, req, rec, &domain.Principal{ID: "a1", Role: domain.RoleAdmin})
	c.SetParamNames("id")
	c.SetParamValues("l1")

	if err := h.Moderate(c); err != domain.ErrInvalidTransition {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestListingHandler_ListApproved(t *testing.T) {
	e := newTestEcho()
	svc := &stubListingService{
		listFn: func(ctx context.Context) ([]*domain.Listing, error) {
			return []*domain.Listing{
				{ID: "l1", Status: domain.StatusApproved},
				{ID: "l2", Status: domain.StatusApproved},
			}, nil
		},
	}
	h := NewListingHandler(svc, &stubImageStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()

	if err := h.ListApproved(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["count"] != float64(2) {
		t.Fatalf("expected count 2, got %+v", resp["count"])
	}
}

func TestListingHandler_Delete(t *testing.T) {
	e := newTestEcho()
	var deleted string
	svc := &stubListingService{
		deleteFn: func(ctx context.Context, p *domain.Principal, id string) error {
			deleted = id
			return nil
		},
	}
	h := NewListingHandler(svc, &stubImageStore{})

	req := httptest.NewRequest(http.MethodDelete, "/api/products/l1", nil)
	rec := httptest.NewRecorder()
	c := principalCtx(e, req, rec, testOwner)
	c.SetParamNames("id")
	c.SetParamValues("l1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if deleted != "l1" {
		t.Fatalf("expected delete of l1, got %q", deleted)
	}
}
