package profile

import (
	"net/http"

	"github.com/avasar/portal/internal/services/web/api"
	"github.com/avasar/portal/internal/services/web/forms"
	module "github.com/avasar/portal/internal/services/web/module"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
	"github.com/avasar/portal/internal/services/web/platform/flash"
	"github.com/avasar/portal/internal/services/web/platform/httpx"
	webi18n "github.com/avasar/portal/internal/services/web/platform/i18n"
	"github.com/avasar/portal/internal/services/web/platform/pagerender"
	"github.com/avasar/portal/internal/services/web/platform/weberror"
	"github.com/avasar/portal/internal/services/web/routepath"
	"github.com/avasar/portal/internal/services/web/session"
	webtemplates "github.com/avasar/portal/internal/services/web/templates"
)

const (
	titleKey        = "user.profile.title"
	savedKey        = "user.profile.saved"
	photoSavedKey   = "user.profile.photo_saved"
	loadFailedKey   = "user.profile.load_failed"
	saveFailedKey   = "user.profile.save_failed"
	photoFailedKey  = "user.profile.photo_failed"
	multipartMemory = 1 << 20
)

type handlers struct {
	service service
	deps    module.Dependencies
}

func newHandlers(s service, deps module.Dependencies) handlers {
	return handlers{service: s, deps: deps}
}

func (h handlers) view(w http.ResponseWriter, r *http.Request) webtemplates.ProfileView {
	base := pagerender.NewBase(w, r, h.deps, webtemplates.AreaUser, titleKey)
	view := webtemplates.ProfileView{Base: base}
	if base.User != nil {
		view.Form = formFor(*base.User)
	}
	return view
}

func formFor(user session.UserSummary) webtemplates.ProfileForm {
	return webtemplates.ProfileForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	}
}

// remember merges a server-returned user into the cached session and the
// page being rendered.
func (h handlers) remember(r *http.Request, view *webtemplates.ProfileView, user api.User) {
	merged, ok := h.deps.Sessions.UpdateUser(h.deps.Token(r), user)
	if !ok {
		merged = session.FromAPI(user)
	}
	view.User = &merged
}

func (h handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	view := h.view(w, r)
	user, err := h.service.load(r.Context(), h.deps.Token(r))
	if err != nil {
		view.Error = webi18n.ErrorMessage(view.Loc, err, loadFailedKey)
	} else {
		h.remember(r, &view, user)
		view.Form = formFor(*view.User)
	}
	h.writePage(w, r, http.StatusOK, view)
}

func (h handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.WriteModuleError(w, r, apperrors.E(apperrors.KindInvalidInput, "invalid form submission"), h.deps)
		return
	}
	view := h.view(w, r)
	values := forms.FromForm(r.PostForm, forms.FieldFirstName, forms.FieldLastName, forms.FieldEmail, forms.FieldPhone)
	view.Form = webtemplates.ProfileForm{
		FirstName: values[forms.FieldFirstName],
		LastName:  values[forms.FieldLastName],
		Email:     values[forms.FieldEmail],
		Phone:     values[forms.FieldPhone],
	}
	user, failures, err := h.service.update(r.Context(), h.deps.Token(r), values)
	switch {
	case len(failures) > 0:
		view.Errors = view.Localize(failures)
		h.writePage(w, r, http.StatusUnprocessableEntity, view)
	case err != nil:
		view.Error = webi18n.ErrorMessage(view.Loc, err, saveFailedKey)
		h.writePage(w, r, http.StatusOK, view)
	default:
		h.remember(r, &view, user)
		flash.Write(w, r, h.deps.Cookies, flash.NoticeSuccess(savedKey))
		httpx.WriteRedirect(w, r, routepath.UserProfile)
	}
}

func (h handlers) handlePhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxPhotoBytes+multipartMemory)
	view := h.view(w, r)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status := http.StatusUnprocessableEntity
		photoErr := errPhotoMissing
		if isTooLarge(err) {
			status = http.StatusRequestEntityTooLarge
			photoErr = errPhotoTooLarge
		}
		view.PhotoError = view.T(apperrors.LocalizationKey(photoErr))
		h.writePage(w, r, status, view)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		view.PhotoError = view.T(apperrors.LocalizationKey(errPhotoMissing))
		h.writePage(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	defer file.Close()

	photo, err := readPhoto(file, header)
	if err != nil {
		view.PhotoError = webi18n.ErrorMessage(view.Loc, err, photoFailedKey)
		h.writePage(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	user, err := h.service.upload(r.Context(), h.deps.Token(r), photo)
	if err != nil {
		view.PhotoError = webi18n.ErrorMessage(view.Loc, err, photoFailedKey)
		h.writePage(w, r, http.StatusOK, view)
		return
	}
	h.remember(r, &view, user)
	flash.Write(w, r, h.deps.Cookies, flash.NoticeSuccess(photoSavedKey))
	httpx.WriteRedirect(w, r, routepath.UserProfile)
}

func (h handlers) handleUnknown(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Root, http.StatusFound)
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, status int, view webtemplates.ProfileView) {
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Base:       view.Base,
		StatusCode: status,
		Fragment:   webtemplates.View("user.profile", view),
	}); err != nil {
		weberror.WriteModuleError(w, r, err, h.deps)
	}
}
