package profile

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/forms"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

// MaxPhotoBytes caps profile photo uploads.
const MaxPhotoBytes = 5 << 20

var (
	errPhotoTooLarge = apperrors.EK(apperrors.KindInvalidInput, "user.profile.photo_too_large", "")
	errPhotoType     = apperrors.EK(apperrors.KindInvalidInput, "user.profile.photo_type", "")
	errPhotoMissing  = apperrors.EK(apperrors.KindInvalidInput, "user.profile.photo_missing", "")
)

type service struct {
	gateway Gateway
}

func newService(gateway Gateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) load(ctx context.Context, token string) (api.User, error) {
	return s.gateway.Profile(ctx, token)
}

// update validates the editable fields and saves them. Field failures skip
// the API call.
func (s service) update(ctx context.Context, token string, values forms.Values) (api.User, map[string]string, error) {
	if failures := forms.Validate(forms.ProfileRules, values); len(failures) > 0 {
		return api.User{}, failures, nil
	}
	user, err := s.gateway.UpdateProfile(ctx, token, api.ProfileUpdate{
		FirstName: values[forms.FieldFirstName],
		LastName:  values[forms.FieldLastName],
		Phone:     values[forms.FieldPhone],
		Email:     values[forms.FieldEmail],
	})
	return user, nil, err
}

// readPhoto reads one uploaded image of at most MaxPhotoBytes. The content
// type is sniffed from the bytes, not taken from the client.
func readPhoto(file multipart.File, header *multipart.FileHeader) (api.PhotoUpload, error) {
	if header.Size > MaxPhotoBytes {
		return api.PhotoUpload{}, errPhotoTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxPhotoBytes+1))
	if err != nil {
		return api.PhotoUpload{}, err
	}
	if len(data) > MaxPhotoBytes {
		return api.PhotoUpload{}, errPhotoTooLarge
	}
	if len(data) == 0 {
		return api.PhotoUpload{}, errPhotoMissing
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return api.PhotoUpload{}, errPhotoType
	}
	return api.PhotoUpload{
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s service) upload(ctx context.Context, token string, photo api.PhotoUpload) (api.User, error) {
	result, err := s.gateway.UploadPhoto(ctx, token, photo)
	if err != nil {
		return api.User{}, err
	}
	user := result.User
	if user.ProfilePhoto == "" {
		user.ProfilePhoto = result.PhotoURL
	}
	return user, nil
}

// isTooLarge reports whether err came from the request body size cap.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge)
}
