package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const flashCookie = "drive_flash"

// Flash - одноразовое сообщение для страницы, на которую ушел редирект
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func setFlash(w http.ResponseWriter, f Flash) {
	data, _ := json.Marshal(f)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash читает сообщение и сразу удаляет cookie
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}

// safeRedirect принимает только относительные пути этого сайта
func safeRedirect(target string) (string, bool) {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return "", false
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "", false
	}
	return u.String(), true
}

// withQuery добавляет параметр к адресу редиректа
func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// GetFlash отдает и удаляет сообщение, оставленное редиректом
func GetFlash(w http.ResponseWriter, r *http.Request) {
	respondOK(w, popFlash(w, r))
}
