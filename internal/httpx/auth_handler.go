package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

type ctxKey int

const sessionKey ctxKey = 0

const maxUpload = 10 << 20

func sessionFrom(ctx context.Context) accounts.Session {
	s, _ := ctx.Value(sessionKey).(accounts.Session)
	return s
}

// requireSession resolves the bearer token. The profile, role included, is
// read from the store on every request.
func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := a.Accounts.CurrentSession(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, r, a.Log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, s)))
	})
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).Profile.IsAdmin() {
			writeError(w, r, a.Log, accounts.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) signUp(w http.ResponseWriter, r *http.Request) {
	var in accounts.SignUpInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	s, err := a.Accounts.SignUp(ctx, in)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	s, err := a.Accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) signOut(w http.ResponseWriter, r *http.Request) {
	if err := a.Accounts.SignOut(r.Context(), r.Header.Get("Authorization")); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Berhasil keluar.")
}

func (a *API) session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()))
}

func (a *API) myProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).Profile)
}

func (a *API) updateMyProfile(w http.ResponseWriter, r *http.Request) {
	var patch accounts.ProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	me := sessionFrom(r.Context()).Profile
	p, err := a.Accounts.UpdateProfile(r.Context(), me, me.ID, patch)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) uploadIDCard(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, r, a.Log, validation.Errors{}.Add("file", "multipart form required"))
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, a.Log, validation.Errors{}.Add("file", "is required"))
		return
	}
	defer f.Close()

	me := sessionFrom(r.Context()).Profile
	p, err := a.Accounts.UploadIDCard(r.Context(), me.ID, blob.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) myRentals(w http.ResponseWriter, r *http.Request) {
	rs, err := a.Rentals.ListByUser(r.Context(), sessionFrom(r.Context()).Profile.ID)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (a *API) mySales(w http.ResponseWriter, r *http.Request) {
	ss, err := a.Sales.ListByUser(r.Context(), sessionFrom(r.Context()).Profile.ID)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}
