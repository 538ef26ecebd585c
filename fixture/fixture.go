// Package fixture serves the static HTML pages that every library suite
// drives a browser against.
package fixture

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/golang/glog"
)

// Paths served by Handler.
const (
	IndexPath              = "/"
	DynamicDisclosePath    = "/dynamic_disclose"
	FormPath               = "/form"
	SelectorPlaygroundPath = "/selector_playground"
	BasicAuthPath          = "/basic_auth"
	HiddenPath             = "/hidden"
	ShadowPath             = "/shadow"
)

// Credentials accepted by the basic auth page.
const (
	Username = "admin"
	Password = "password"
	Realm    = "Login Required"
)

// Banner is printed by Serve once the listener is ready. It matches the
// line the Flask development server prints, so launchers written for one
// work with the other.
const Banner = " * Running on %s (Press CTRL+C to quit)"

var pages = map[string]string{
	IndexPath:              indexPage,
	DynamicDisclosePath:    dynamicDisclosePage,
	FormPath:               formPage,
	SelectorPlaygroundPath: selectorPlaygroundPage,
	HiddenPath:             hiddenPage,
	ShadowPath:             shadowPage,
}

// Paths returns every path the fixture serves.
func Paths() []string {
	return []string{
		IndexPath,
		DynamicDisclosePath,
		FormPath,
		SelectorPlaygroundPath,
		BasicAuthPath,
		HiddenPath,
		ShadowPath,
	}
}

// Handler serves the fixture pages.
var Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	glog.V(1).Infof("%s %s", r.Method, r.URL.Path)
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path == BasicAuthPath {
		basicAuth(w, r)
		return
	}

	page, ok := pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page)
})

func basicAuth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	user, pass, ok := r.BasicAuth()
	if !ok || !equal(user, Username) || !equal(pass, Password) {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", Realm))
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "<html><body>%s</body></html>", UnauthenticatedBody)
		return
	}
	fmt.Fprintf(w, "<html><body>%s</body></html>", AuthenticatedBody)
}

func equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// NewServer starts an in-process server for Handler. The caller must Close
// it.
func NewServer() *httptest.Server {
	return httptest.NewServer(Handler)
}

// bannerURL is the URL announced for a listener. A wildcard listener is
// announced on the IPv4 loopback so the URL can be dialled.
func bannerURL(a net.Addr) string {
	tcp, ok := a.(*net.TCPAddr)
	if !ok {
		return fmt.Sprintf("http://%s/", a)
	}
	host := tcp.IP.String()
	if tcp.IP == nil || tcp.IP.IsUnspecified() {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, strconv.Itoa(tcp.Port)))
}

// Serve listens on addr and serves Handler until ctx is cancelled. Once the
// listener is bound, Banner is written to out with the server's URL.
func Serve(ctx context.Context, addr string, out io.Writer) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %q: %v", addr, err)
	}
	srv := &http.Server{Handler: Handler}

	u := bannerURL(l.Addr())
	fmt.Fprintf(out, Banner+"\n", u)
	glog.Infof("Serving fixtures on %s", u)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(l)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down fixture server: %v", err)
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}
