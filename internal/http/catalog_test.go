package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogPages(t *testing.T) {
	ta := newTestApp(t, appOpts{})
	b := newBrowser(t, ta.app)

	resp := b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	home := body(t, resp)
	assert.Contains(t, home, "Neutras")

	menu := body(t, b.get("/menu"))
	for _, name := range []string{"Naranja Valencia", "Fresa", "Aguacate Hass"} {
		assert.Contains(t, menu, name)
	}

	resp = b.get("/categoria/" + url.PathEscape("Cítricas"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cat := body(t, resp)
	assert.Contains(t, cat, "Toronja rosada")
	assert.NotContains(t, cat, "Mango Ataulfo")

	offers := body(t, b.get("/ofertas"))
	assert.Contains(t, offers, "Naranja Valencia")
	assert.Contains(t, offers, "25.60")
	assert.NotContains(t, offers, "Plátano Tabasco")

	detail := body(t, b.get("/product/3"))
	assert.Contains(t, detail, "Temporada de cítricos")
	assert.Contains(t, detail, "28.80")
}

func TestSearch(t *testing.T) {
	ta := newTestApp(t, appOpts{})
	b := newBrowser(t, ta.app)

	resp := b.get("/search?q=" + url.QueryEscape("limón"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Limón sin semilla")

	resp = b.get("/search?q=" + url.QueryEscape("<script>"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, http.StatusOK, b.get("/search").StatusCode)
}

func TestHealthz(t *testing.T) {
	ta := newTestApp(t, appOpts{})
	resp := newBrowser(t, ta.app).get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, body(t, resp))
}
