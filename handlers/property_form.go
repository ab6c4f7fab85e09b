package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/storage"
)

const imagesField = "images"

// upload is one accepted image file, already sniffed.
type upload struct {
	name string
	data []byte
}

type uploadLimits struct {
	maxFiles    int
	maxFileSize int64
}

// readPropertyInput accepts either a multipart form (fields plus "images"
// files) or a JSON body.
func readPropertyInput(c echo.Context, limits uploadLimits) (models.PropertyInput, []upload, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEMultipartForm) || strings.HasPrefix(ctype, echo.MIMEApplicationForm) {
		return readPropertyForm(c, limits)
	}

	var in models.PropertyInput
	if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil && err != io.EOF {
		return in, nil, models.BadRequest("Invalid request body")
	}
	return in, nil, nil
}

func readPropertyForm(c echo.Context, limits uploadLimits) (models.PropertyInput, []upload, error) {
	var in models.PropertyInput

	values := map[string][]string{}
	var files []*multipart.FileHeader
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return in, nil, models.BadRequest("Invalid multipart form")
		}
		values = form.Value
		for field, fhs := range form.File {
			if field != imagesField {
				return in, nil, models.BadRequest("Unexpected file field.")
			}
			files = fhs
		}
	} else {
		form, err := c.FormParams()
		if err != nil {
			return in, nil, models.BadRequest("Invalid form body")
		}
		values = form
	}

	uploads, err := readUploads(files, limits)
	if err != nil {
		return in, nil, err
	}

	f := formReader{values: values}
	in.Title = f.strVal("title")
	in.Description = f.strVal("description")
	in.Price = f.floatVal("price")
	in.Type = f.strVal("type")
	in.Status = f.strVal("status")
	in.Bedrooms = f.intVal("bedrooms")
	in.Bathrooms = f.floatVal("bathrooms")
	in.Area = f.floatVal("area")
	in.Address = f.strVal("address")
	in.Latitude = f.floatVal("latitude")
	in.Longitude = f.floatVal("longitude")
	if raw := f.strVal("coordinates"); raw != nil {
		var coords models.CoordsInput
		if err := json.Unmarshal([]byte(*raw), &coords); err != nil {
			f.fail("coordinates")
		} else {
			in.Coordinates = &coords
		}
	}
	in.Features = f.list("features")
	in.YearBuilt = f.intVal("yearBuilt")
	in.ParkingSpaces = f.intVal("parkingSpaces")
	in.PetFriendly = f.boolVal("petFriendly")
	in.Furnished = f.boolVal("furnished")
	if raw := f.strVal("utilities"); raw != nil {
		var u models.Utilities
		if err := json.Unmarshal([]byte(*raw), &u); err != nil {
			f.fail("utilities")
		} else {
			in.Utilities = &u
		}
	}
	if raw := f.strVal("contactInfo"); raw != nil {
		var info models.ContactInfo
		if err := json.Unmarshal([]byte(*raw), &info); err != nil {
			f.fail("contactInfo")
		} else {
			in.ContactInfo = &info
		}
	}
	if replace := f.boolVal("replaceImages"); replace != nil {
		in.ReplaceImages = *replace
	}

	if err := models.NewValidationError(f.errs); err != nil {
		return in, nil, err
	}
	return in, uploads, nil
}

func readUploads(files []*multipart.FileHeader, limits uploadLimits) ([]upload, error) {
	if len(files) > limits.maxFiles {
		return nil, models.BadRequest(fmt.Sprintf("Too many files. Maximum %d files allowed.", limits.maxFiles))
	}

	uploads := make([]upload, 0, len(files))
	for _, fh := range files {
		if fh.Size > limits.maxFileSize {
			return nil, models.BadRequest(fmt.Sprintf("File too large. Maximum size is %dMB per file.", limits.maxFileSize/(1024*1024)))
		}
		data, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		if _, err := storage.DetectImage(data); err != nil {
			return nil, err
		}
		uploads = append(uploads, upload{name: fh.Filename, data: data})
	}
	return uploads, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// formReader converts form strings into optional typed values, collecting a
// field error for each value that does not parse.
type formReader struct {
	values map[string][]string
	errs   []models.FieldError
}

func (f *formReader) fail(field string) {
	f.errs = append(f.errs, models.FieldError{Field: field, Message: models.Property{}.FieldMessage(field, "type")})
}

func (f *formReader) strVal(key string) *string {
	vs, ok := f.values[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

func (f *formReader) floatVal(key string) *float64 {
	raw := f.strVal(key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		f.fail(key)
		return nil
	}
	return &v
}

func (f *formReader) intVal(key string) *int {
	raw := f.strVal(key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		f.fail(key)
		return nil
	}
	return &v
}

func (f *formReader) boolVal(key string) *bool {
	raw := f.strVal(key)
	if raw == nil {
		return nil
	}
	switch strings.TrimSpace(*raw) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	f.fail(key)
	return nil
}

// list reads repeated keys, a JSON array, or a comma separated string.
func (f *formReader) list(key string) []string {
	vs, ok := f.values[key]
	if !ok {
		return nil
	}
	if len(vs) > 1 {
		return vs
	}
	raw := strings.TrimSpace(vs[0])
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out
		}
	}
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
