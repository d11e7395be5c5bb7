package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminGuardRequiresAdmin(t *testing.T) {
	ta := newTestApp(t, appOpts{})

	anon := newBrowser(t, ta.app)
	resp := anon.get("/admin/orders")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fadmin%2Forders", resp.Header.Get("Location"))

	user := newBrowser(t, ta.app)
	user.login(ta.users, "u-ana")
	assert.Equal(t, http.StatusForbidden, user.get("/admin/orders").StatusCode)

	admin := newBrowser(t, ta.app)
	admin.login(ta.users, "u-admin")
	assert.Equal(t, http.StatusOK, admin.get("/admin/orders").StatusCode)
}

func TestAdminUpdatesOrderStatus(t *testing.T) {
	ta := newTestApp(t, appOpts{})
	cust := newBrowser(t, ta.app)
	cust.login(ta.users, "u-beto")
	cust.xhr("/cart/add/3")
	loc := cust.post("/checkout", nil).Header.Get("Location")
	id := strings.TrimPrefix(loc, "/order/")
	require.NotEmpty(t, id)

	admin := newBrowser(t, ta.app)
	admin.login(ta.users, "u-admin")
	assert.Contains(t, body(t, admin.get("/admin/orders")), "beto@olivosverdes.test")

	resp := admin.post("/admin/orders/"+id+"/status", url.Values{"status": {"shipped"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	var status string
	require.NoError(t, ta.db.Get(&status, `SELECT status FROM orders WHERE id = ?`, id))
	assert.Equal(t, "SHIPPED", status)

	resp = admin.post("/admin/orders/"+id+"/status", url.Values{"status": {"LOST"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = admin.post("/admin/orders/nope/status", url.Values{"status": {"DELIVERED"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
