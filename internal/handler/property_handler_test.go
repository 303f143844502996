package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/repository"
	"github.com/shinyyama/realestate-backend/internal/service"
	"github.com/shinyyama/realestate-backend/internal/storage/storagetest"
	"github.com/shinyyama/realestate-backend/internal/testutil"
)

func propertyEcho(t *testing.T) (*echo.Echo, *model.Property) {
	t.Helper()
	gdb := testutil.OpenDB(t)
	svc := service.NewPropertyService(repository.NewPropertyRepository(gdb), storagetest.NewMemory())
	p := testutil.CreateProperty(t, gdb, "seller-secret-id", model.PropertyStatusActive)
	e := newTestEcho(func(e *echo.Echo, auth echo.MiddlewareFunc) {
		h := NewPropertyHandler(svc)
		e.GET("/properties", h.List)
		e.GET("/properties/:id", h.Get)
		e.POST("/properties", h.Create, auth)
		e.PUT("/properties/:id", h.Update, auth)
		e.GET("/properties/seller/my-listings", h.ListMine, auth)
		e.POST("/properties/:id/images", h.UploadImages, auth)
	})
	return e, p
}

func TestPropertyResponsesOmitSeller(t *testing.T) {
	e, p := propertyEcho(t)
	for _, path := range []string{"/properties", "/properties/" + p.ID, "/properties?city=hyder&minPrice=1"} {
		rec := doJSON(e, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rec.Code)
		}
		out := rec.Body.String()
		if strings.Contains(out, "seller-secret-id") || strings.Contains(strings.ToLower(out), "seller") {
			t.Fatalf("%s leaks seller: %s", path, out)
		}
	}

	rec := doJSON(e, http.MethodGet, "/properties/seller/my-listings", "seller-secret-id", "")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "seller-secret-id") {
		t.Fatalf("my-listings status=%d body=%s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["count"] != float64(1) {
		t.Fatalf("my-listings count mismatch: %s", rec.Body.String())
	}
}

func TestPropertyListBadQuery(t *testing.T) {
	e, _ := propertyEcho(t)
	rec := doJSON(e, http.MethodGet, "/properties?minPrice=cheap", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rec.Code)
	}
}

func TestPropertyCreateAndUpdate(t *testing.T) {
	e, _ := propertyEcho(t)
	rec := doJSON(e, http.MethodPost, "/properties", "seller-2", `{
		"title": "Farm land",
		"propertyType": "land",
		"price": 750000,
		"area": {"value": 3, "unit": "Acre"},
		"location": {"address": "NH 65", "city": "Suryapet", "state": "Telangana", "pincode": "508213"},
		"roadAccess": {"hasRoadAccess": true, "distanceFromRoad": {"value": 50}, "roadType": "national_highway"},
		"facing": "South West"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	prop := decode(t, rec)["property"].(map[string]interface{})
	if prop["facing"] != "south-west" || prop["area"].(map[string]interface{})["unit"] != "acres" {
		t.Fatalf("not normalized: %v", prop)
	}
	road := prop["roadAccess"].(map[string]interface{})["distanceFromRoad"].(map[string]interface{})
	if road["unit"] != "meters" {
		t.Fatalf("distance unit default missing: %v", road)
	}
	id := prop["id"].(string)

	rec = doJSON(e, http.MethodPut, "/properties/"+id, "someone-else", `{"price": 1}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d want 403", rec.Code)
	}
	rec = doJSON(e, http.MethodPut, "/properties/"+id, "seller-2", `{"price": 800000, "status": "sold"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	prop = decode(t, rec)["property"].(map[string]interface{})
	if prop["price"] != float64(800000) || prop["status"] != "sold" || prop["title"] != "Farm land" {
		t.Fatalf("unexpected update %v", prop)
	}

	rec = doJSON(e, http.MethodPost, "/properties", "seller-2", `{"title": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rec.Code)
	}
}

func TestUploadImagesHandler(t *testing.T) {
	e, p := propertyEcho(t)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images"; filename="front.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/properties/"+p.ID+"/images", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set("X-User-ID", "seller-secret-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	images := decode(t, rec)["property"].(map[string]interface{})["images"].([]interface{})
	if len(images) != 1 {
		t.Fatalf("images=%v", images)
	}
}
