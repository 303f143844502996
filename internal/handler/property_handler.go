package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/repository"
	"github.com/shinyyama/realestate-backend/internal/service"
)

type PropertyHandler struct {
	svc service.PropertyService
}

func NewPropertyHandler(svc service.PropertyService) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

type areaBody struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type coordinatesBody struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type locationBody struct {
	Address     string           `json:"address"`
	City        string           `json:"city"`
	State       string           `json:"state"`
	Pincode     string           `json:"pincode,omitempty"`
	Coordinates *coordinatesBody `json:"coordinates,omitempty"`
}

type distanceBody struct {
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`
}

type roadAccessBody struct {
	HasRoadAccess    bool          `json:"hasRoadAccess"`
	DistanceFromRoad *distanceBody `json:"distanceFromRoad,omitempty"`
	RoadType         string        `json:"roadType,omitempty"`
}

type amenitiesBody struct {
	Electricity  bool `json:"electricity"`
	Water        bool `json:"water"`
	Drainage     bool `json:"drainage"`
	BoundaryWall bool `json:"boundaryWall"`
}

// propertyRequest serves both create and update; on update only the fields
// present in the body change.
type propertyRequest struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	PropertyType *string         `json:"propertyType"`
	Price        *int64          `json:"price"`
	Area         *areaBody       `json:"area"`
	Location     *locationBody   `json:"location"`
	RoadAccess   *roadAccessBody `json:"roadAccess"`
	Amenities    *amenitiesBody  `json:"amenities"`
	Facing       *string         `json:"facing"`
	Status       *string         `json:"status"`
}

type PropertyImageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PropertyResponse is the public listing shape. It has no seller field:
// contact is only reachable through an unlock.
type PropertyResponse struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	PropertyType string                  `json:"propertyType"`
	Price        int64                   `json:"price"`
	Area         areaBody                `json:"area"`
	Location     locationBody            `json:"location"`
	RoadAccess   roadAccessBody          `json:"roadAccess"`
	Amenities    amenitiesBody           `json:"amenities"`
	Facing       string                  `json:"facing,omitempty"`
	Images       []PropertyImageResponse `json:"images"`
	Status       string                  `json:"status"`
	IsFeatured   bool                    `json:"isFeatured"`
	CreatedAt    string                  `json:"createdAt"`
	UpdatedAt    string                  `json:"updatedAt"`
}

func toPropertyResponse(p *model.Property) PropertyResponse {
	images := make([]PropertyImageResponse, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, PropertyImageResponse{ID: img.ID, URL: img.ImageURL})
	}
	loc := locationBody{
		Address: p.Location.Address,
		City:    p.Location.City,
		State:   p.Location.State,
		Pincode: p.Location.Pincode,
	}
	if p.Location.Latitude != nil || p.Location.Longitude != nil {
		loc.Coordinates = &coordinatesBody{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude}
	}
	road := roadAccessBody{HasRoadAccess: p.RoadAccess.HasRoadAccess, RoadType: p.RoadAccess.RoadType}
	if p.RoadAccess.DistanceValue != nil {
		road.DistanceFromRoad = &distanceBody{Value: p.RoadAccess.DistanceValue, Unit: p.RoadAccess.DistanceUnit}
	}
	return PropertyResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: string(p.PropertyType),
		Price:        p.Price,
		Area:         areaBody{Value: p.Area.Value, Unit: p.Area.Unit},
		Location:     loc,
		RoadAccess:   road,
		Amenities: amenitiesBody{
			Electricity:  p.Amenities.Electricity,
			Water:        p.Amenities.Water,
			Drainage:     p.Amenities.Drainage,
			BoundaryWall: p.Amenities.BoundaryWall,
		},
		Facing:     p.Facing,
		Images:     images,
		Status:     string(p.Status),
		IsFeatured: p.IsFeatured,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
}

func toPropertyResponses(list []model.Property) []PropertyResponse {
	resp := make([]PropertyResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toPropertyResponse(&list[i]))
	}
	return resp
}

func (b *locationBody) toModel() model.Location {
	loc := model.Location{Address: b.Address, City: b.City, State: b.State, Pincode: b.Pincode}
	if b.Coordinates != nil {
		loc.Latitude = b.Coordinates.Latitude
		loc.Longitude = b.Coordinates.Longitude
	}
	return loc
}

func (b *roadAccessBody) toModel() model.RoadAccess {
	ra := model.RoadAccess{HasRoadAccess: b.HasRoadAccess, RoadType: b.RoadType}
	if b.DistanceFromRoad != nil {
		ra.DistanceValue = b.DistanceFromRoad.Value
		ra.DistanceUnit = b.DistanceFromRoad.Unit
	}
	return ra
}

func (b *amenitiesBody) toModel() model.Amenities {
	return model.Amenities{Electricity: b.Electricity, Water: b.Water, Drainage: b.Drainage, BoundaryWall: b.BoundaryWall}
}

func (r *propertyRequest) toInput() service.PropertyInput {
	var in service.PropertyInput
	if r.Title != nil {
		in.Title = *r.Title
	}
	if r.Description != nil {
		in.Description = *r.Description
	}
	if r.PropertyType != nil {
		in.PropertyType = model.PropertyType(*r.PropertyType)
	}
	if r.Price != nil {
		in.Price = *r.Price
	}
	if r.Area != nil {
		in.Area = model.Area{Value: r.Area.Value, Unit: r.Area.Unit}
	}
	if r.Location != nil {
		in.Location = r.Location.toModel()
	}
	if r.RoadAccess != nil {
		in.RoadAccess = r.RoadAccess.toModel()
	}
	if r.Amenities != nil {
		in.Amenities = r.Amenities.toModel()
	}
	if r.Facing != nil {
		in.Facing = *r.Facing
	}
	return in
}

func (r *propertyRequest) toUpdate() service.PropertyUpdate {
	up := service.PropertyUpdate{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Facing:      r.Facing,
	}
	if r.PropertyType != nil {
		t := model.PropertyType(*r.PropertyType)
		up.PropertyType = &t
	}
	if r.Status != nil {
		s := model.PropertyStatus(*r.Status)
		up.Status = &s
	}
	if r.Area != nil {
		a := model.Area{Value: r.Area.Value, Unit: r.Area.Unit}
		up.Area = &a
	}
	if r.Location != nil {
		l := r.Location.toModel()
		up.Location = &l
	}
	if r.RoadAccess != nil {
		ra := r.RoadAccess.toModel()
		up.RoadAccess = &ra
	}
	if r.Amenities != nil {
		am := r.Amenities.toModel()
		up.Amenities = &am
	}
	return up
}

func (h *PropertyHandler) List(c echo.Context) error {
	var q service.PropertyQuery
	q.Filter = repository.PropertyFilter{
		City:         c.QueryParam("city"),
		PropertyType: model.PropertyType(c.QueryParam("propertyType")),
	}
	var err error
	if q.Filter.MinPrice, err = optionalInt(c.QueryParam("minPrice"), "minPrice"); err != nil {
		return err
	}
	if q.Filter.MaxPrice, err = optionalInt(c.QueryParam("maxPrice"), "maxPrice"); err != nil {
		return err
	}
	if v := c.QueryParam("hasRoadAccess"); v != "" {
		b := v == "true"
		q.Filter.HasRoadAccess = &b
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	page, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"total":      page.Total,
		"page":       page.Page,
		"pages":      page.Pages,
		"properties": toPropertyResponses(page.Properties),
	})
}

func (h *PropertyHandler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"property": toPropertyResponse(p),
	})
}

func (h *PropertyHandler) Create(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var body propertyRequest
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("Invalid request body.")
	}
	p, err := h.svc.Create(c.Request().Context(), uid, body.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":  true,
		"property": toPropertyResponse(p),
	})
}

func (h *PropertyHandler) Update(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var body propertyRequest
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("Invalid request body.")
	}
	p, err := h.svc.Update(c.Request().Context(), uid, c.Param("id"), body.toUpdate())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"property": toPropertyResponse(p),
	})
}

func (h *PropertyHandler) Delete(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Property deleted successfully.",
	})
}

func (h *PropertyHandler) ListMine(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.svc.ListBySeller(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"count":      len(list),
		"properties": toPropertyResponses(list),
	})
}

func (h *PropertyHandler) UploadImages(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return apperr.Validation("Images must be sent as multipart form data.")
	}
	headers := form.File["images"]
	if len(headers) > model.MaxPropertyImages {
		return apperr.Validation("Maximum 10 images allowed.")
	}
	files := make([]service.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > service.MaxImageBytes {
			return apperr.Validation("Each image must be between 1 byte and 5 MB.")
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
		f.Close()
		if err != nil {
			return err
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		files = append(files, service.ImageUpload{Filename: fh.Filename, ContentType: ct, Data: data})
	}
	p, err := h.svc.AddImages(c.Request().Context(), uid, c.Param("id"), files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"property": toPropertyResponse(p),
	})
}

func (h *PropertyHandler) DeleteImage(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	p, err := h.svc.DeleteImage(c.Request().Context(), uid, c.Param("id"), c.Param("imageId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Image deleted.",
		"images":  toPropertyResponse(p).Images,
	})
}

func optionalInt(raw, name string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.Validation("Invalid " + name + ".")
	}
	return &v, nil
}
