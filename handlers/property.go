package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wisdomairey/real-estate-listings-app/middleware"
	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/query"
	"github.com/wisdomairey/real-estate-listings-app/storage"
	"github.com/wisdomairey/real-estate-listings-app/utils"
)

// PropertyStore is the persistence the property endpoints need.
type PropertyStore interface {
	Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Property, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	Create(ctx context.Context, property *models.Property) error
	Replace(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	RemoveImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Property, error)
	ImageInUse(ctx context.Context, url string, exclude primitive.ObjectID) (bool, error)
	Stats(ctx context.Context) (*models.PropertyStats, error)
}

// ListingCache holds rendered listing pages. Implementations must tolerate
// being disabled.
type ListingCache interface {
	PropertyListKey(ctx context.Context, role string, params map[string]string) (string, error)
	GetCached(ctx context.Context, key string, dest interface{}) (bool, error)
	SetCached(ctx context.Context, key string, value interface{}) error
	InvalidateProperties(ctx context.Context) error
}

type PropertyController struct {
	store   PropertyStore
	builder *query.Builder
	images  storage.ImageStore
	cache   ListingCache
	limits  uploadLimits
	log     zerolog.Logger
}

type PropertyControllerConfig struct {
	MaxFiles    int
	MaxFileSize int64
}

func NewPropertyController(store PropertyStore, geo query.GeoResolver, images storage.ImageStore, cache ListingCache, cfg PropertyControllerConfig, log zerolog.Logger) *PropertyController {
	return &PropertyController{
		store:   store,
		builder: query.NewBuilder(geo),
		images:  images,
		cache:   cache,
		limits:  uploadLimits{maxFiles: cfg.MaxFiles, maxFileSize: cfg.MaxFileSize},
		log:     log.With().Str("handler", "properties").Logger(),
	}
}

type availableFilters struct {
	Types    []models.PropertyType   `json:"types"`
	Statuses []models.PropertyStatus `json:"statuses"`
}

type appliedFilters struct {
	Applied   map[string]interface{} `json:"applied"`
	Available availableFilters       `json:"available"`
}

type propertyList struct {
	Properties []models.Property `json:"properties"`
	Pagination query.Pagination  `json:"pagination"`
	Filters    appliedFilters    `json:"filters"`
}

type propertyBody struct {
	Property *models.Property `json:"property"`
}

func (pc *PropertyController) ListProperties(c echo.Context) error {
	ctx := c.Request().Context()
	values := c.QueryParams()

	if err := query.ValidateValues(values); err != nil {
		return err
	}

	role := "public"
	isAdmin := middleware.IsAdmin(c)
	if isAdmin {
		role = string(models.RoleAdmin)
	}

	cacheKey, err := pc.cache.PropertyListKey(ctx, role, flattenQuery(values))
	if err != nil {
		pc.log.Warn().Err(err).Msg("listing cache key failed")
		cacheKey = ""
	}
	if cacheKey != "" {
		var cached propertyList
		hit, err := pc.cache.GetCached(ctx, cacheKey, &cached)
		if err != nil {
			pc.log.Warn().Err(err).Msg("listing cache read failed")
		} else if hit {
			return c.JSON(http.StatusOK, models.OK("", cached))
		}
	}

	params := query.ParseParams(values)
	filter, err := pc.builder.Build(ctx, params, isAdmin)
	if err != nil {
		return err
	}

	list := propertyList{
		Properties: []models.Property{},
		Filters: appliedFilters{
			Applied: appliedQuery(values),
			Available: availableFilters{
				Types:    models.PropertyTypes,
				Statuses: models.PropertyStatuses,
			},
		},
	}

	if filter.Empty {
		list.Pagination = query.Paginate(0, params.Page, params.Limit)
	} else {
		total, err := pc.store.Count(ctx, filter.Query)
		if err != nil {
			return err
		}
		list.Pagination = query.Paginate(total, params.Page, params.Limit)

		properties, err := pc.store.Find(ctx, filter.Query, query.ParseSort(params.Sort), list.Pagination.Skip(), int64(params.Limit))
		if err != nil {
			return err
		}
		list.Properties = properties
	}

	if cacheKey != "" {
		if err := pc.cache.SetCached(ctx, cacheKey, list); err != nil {
			pc.log.Warn().Err(err).Msg("listing cache write failed")
		}
	}

	return c.JSON(http.StatusOK, models.OK("", list))
}

func (pc *PropertyController) GetProperty(c echo.Context) error {
	id, err := propertyID(c)
	if err != nil {
		return err
	}

	property, err := pc.store.FindByID(c.Request().Context(), id)
	if err != nil {
		return propertyLookupError(err)
	}

	if !property.IsAvailable() && !middleware.IsAdmin(c) {
		return notFound("Property not found")
	}

	return c.JSON(http.StatusOK, models.OK("", propertyBody{Property: property}))
}

func (pc *PropertyController) CreateProperty(c echo.Context) error {
	ctx := c.Request().Context()

	in, uploads, err := readPropertyInput(c, pc.limits)
	if err != nil {
		return err
	}
	if err := models.NewValidationError(in.MissingForCreate()); err != nil {
		return err
	}

	property := models.NewProperty()
	in.ApplyTo(&property)
	if in.Images != nil {
		property.Images = in.Images
	}
	if err := c.Validate(property); err != nil {
		return err
	}

	saved, err := pc.saveUploads(ctx, uploads)
	if err != nil {
		return err
	}
	property.Images = append(property.Images, saved...)

	if err := pc.store.Create(ctx, &property); err != nil {
		pc.discard(ctx, saved)
		return err
	}
	pc.invalidate(ctx)

	pc.log.Info().Str("property_id", property.ID.Hex()).Int("images", len(property.Images)).Msg("property created")
	return c.JSON(http.StatusCreated, models.OK("Property created successfully", propertyBody{Property: &property}))
}

func (pc *PropertyController) UpdateProperty(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := propertyID(c)
	if err != nil {
		return err
	}
	property, err := pc.store.FindByID(ctx, id)
	if err != nil {
		return propertyLookupError(err)
	}

	in, uploads, err := readPropertyInput(c, pc.limits)
	if err != nil {
		return err
	}

	in.ApplyTo(property)
	var replaced []string
	if in.Images != nil {
		replaced = droppedImages(property.Images, in.Images)
		property.Images = in.Images
	}
	if err := c.Validate(*property); err != nil {
		return err
	}

	saved, err := pc.saveUploads(ctx, uploads)
	if err != nil {
		return err
	}

	if len(saved) > 0 {
		if in.ReplaceImages {
			replaced = append(replaced, property.Images...)
			property.Images = saved
		} else {
			property.Images = append(property.Images, saved...)
		}
	}

	if err := pc.store.Replace(ctx, property); err != nil {
		pc.discard(ctx, saved)
		return propertyLookupError(err)
	}
	pc.invalidate(ctx)
	pc.releaseImages(ctx, property.ID, replaced)

	return c.JSON(http.StatusOK, models.OK("Property updated successfully", propertyBody{Property: property}))
}

func (pc *PropertyController) DeleteProperty(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := propertyID(c)
	if err != nil {
		return err
	}
	property, err := pc.store.FindByID(ctx, id)
	if err != nil {
		return propertyLookupError(err)
	}

	if err := pc.store.Delete(ctx, id); err != nil {
		return propertyLookupError(err)
	}
	pc.invalidate(ctx)
	pc.releaseImages(ctx, id, property.Images)

	return c.JSON(http.StatusOK, models.OK("Property deleted successfully", nil))
}

type removeImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (pc *PropertyController) RemovePropertyImage(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := propertyID(c)
	if err != nil {
		return err
	}

	var req removeImageRequest
	if err := c.Bind(&req); err != nil {
		return models.BadRequest("Invalid request body")
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return models.BadRequest("Image URL is required")
	}

	property, err := pc.store.RemoveImage(ctx, id, req.ImageURL)
	if err != nil {
		return propertyLookupError(err)
	}
	pc.invalidate(ctx)
	pc.releaseImages(ctx, id, []string{req.ImageURL})

	return c.JSON(http.StatusOK, models.OK("Image removed successfully", propertyBody{Property: property}))
}

func (pc *PropertyController) GetPropertyStats(c echo.Context) error {
	stats, err := pc.store.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK("", stats))
}

func (pc *PropertyController) saveUploads(ctx context.Context, uploads []upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		imageURL, err := pc.images.Save(ctx, u.data)
		if err != nil {
			pc.log.Error().Err(err).Str("file", u.name).Msg("save image failed")
			pc.discard(ctx, urls)
			return nil, err
		}
		urls = append(urls, imageURL)
	}
	return urls, nil
}

// discard removes files written for a request that did not complete.
func (pc *PropertyController) discard(ctx context.Context, urls []string) {
	for _, imageURL := range urls {
		if err := pc.images.Delete(ctx, imageURL); err != nil {
			pc.log.Warn().Err(err).Str("image", imageURL).Msg("discard image failed")
		}
	}
}

// releaseImages deletes files no other listing references. Failures are
// logged; the record change already happened.
func (pc *PropertyController) releaseImages(ctx context.Context, owner primitive.ObjectID, urls []string) {
	for _, imageURL := range urls {
		inUse, err := pc.store.ImageInUse(ctx, imageURL, owner)
		if err != nil {
			pc.log.Warn().Err(err).Str("image", imageURL).Msg("image reference check failed")
			continue
		}
		if inUse {
			continue
		}
		if err := pc.images.Delete(ctx, imageURL); err != nil {
			pc.log.Warn().Err(err).Str("image", imageURL).Msg("delete image failed")
		}
	}
}

// droppedImages lists the urls in before that after no longer carries.
func droppedImages(before, after []string) []string {
	kept := make(map[string]bool, len(after))
	for _, u := range after {
		kept[u] = true
	}
	var dropped []string
	for _, u := range before {
		if !kept[u] {
			dropped = append(dropped, u)
		}
	}
	return dropped
}

func (pc *PropertyController) invalidate(ctx context.Context) {
	if err := pc.cache.InvalidateProperties(ctx); err != nil {
		pc.log.Warn().Err(err).Msg("listing cache invalidation failed")
	}
}

func propertyID(c echo.Context) (primitive.ObjectID, error) {
	id, err := utils.ParseObjectID(c.Param("id"))
	if errors.Is(err, models.ErrInvalidID) {
		return primitive.NilObjectID, models.NewValidationError([]models.FieldError{{
			Field:   "id",
			Message: "Invalid property ID format",
		}})
	}
	return id, nil
}

func propertyLookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return notFound("Property not found")
	}
	return err
}

func flattenQuery(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k, vs := range values {
		out[k] = strings.Join(vs, ",")
	}
	return out
}

func appliedQuery(values url.Values) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
		} else {
			out[k] = vs
		}
	}
	return out
}
