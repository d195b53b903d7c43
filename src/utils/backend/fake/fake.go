// Package fake serves the issuer REST API from an httptest server. Every route answers with a successful
// canned response unless overridden.
package fake

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

type Request struct {
	Method string
	Path   string
	Header http.Header

	// JSON or text body, multipart forms are flattened into Form
	Body []byte
	Form map[string]string
	File string

	// When the request arrived and when its handler returned
	Received time.Time
	Answered time.Time
}

type Server struct {
	*httptest.Server

	mtx      sync.Mutex
	requests []Request
	handlers map[string]http.HandlerFunc
}

const (
	RouteApiKeys       = "GET /issuer/api-keys"
	RouteExtractOCR    = "POST /issuer/credentials/extract-ocr"
	RouteIsLearner     = "GET /issuer/users/{id}/is-learner"
	RouteWalletLookup  = "GET /wallet/lookup/{email}"
	RouteSearchUsers   = "GET /users/search"
	RouteDigiLocker    = "GET /learners/digilocker-data/by-aadhar/{no}"
	RouteCreate        = "POST /issuer/credentials"
	RouteIssueOnChain  = "POST /blockchain/credentials/issue"
	RouteNetworkStatus = "GET /blockchain/network/status"
	RouteSeed          = "POST /issuer/steganography-seed"
	RouteOverlay       = "POST /issuer/credentials/overlay-qr"
)

func JSON(status int, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func Text(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// Never answers, returns once the client gives up
func Hang() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}
}

func defaults() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		RouteApiKeys: JSON(http.StatusOK, []map[string]interface{}{
			{"id": "k0", "key": "inactive-key", "is_active": false},
			{"id": "k1", "key": "key-1", "is_active": true},
		}),
		RouteExtractOCR: JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"result": map[string]interface{}{
				"extracted_data": map[string]interface{}{
					"title":        "Welding Technician",
					"issuer":       "Skill Council",
					"issue_date":   "2024-01-15",
					"learner_name": "Jon Smith",
					"nsqf_level":   4,
					"skills":       "welding, safety",
				},
			},
		}),
		RouteIsLearner: JSON(http.StatusOK, map[string]interface{}{"is_learner": true}),
		RouteWalletLookup: JSON(http.StatusOK, map[string]interface{}{
			"user_id":        "u1",
			"full_name":      "Jon A Smith",
			"email":          "jon@example.com",
			"wallet_address": "0xabc",
		}),
		RouteSearchUsers: JSON(http.StatusOK, map[string]interface{}{
			"users": []map[string]interface{}{
				{"id": "u1", "full_name": "Jon A Smith", "email": "jon@example.com", "role": "learner"},
			},
		}),
		RouteDigiLocker: JSON(http.StatusOK, map[string]interface{}{
			"aadhar_number": "123412341234",
			"name":          "Ravi Kumar",
			"pan_number":    "ABCDE1234F",
		}),
		RouteCreate: JSON(http.StatusOK, map[string]interface{}{"success": true, "credential_id": "cred-1"}),
		RouteIssueOnChain: JSON(http.StatusOK, map[string]interface{}{
			"success":          true,
			"transaction_hash": "0xtx",
			"credential_hash":  "0xhash",
			"network":          "amoy",
			"qr_code": map[string]interface{}{
				"qr_code_image":    "aW1hZ2U=",
				"verification_url": "https://verify.example.com/cred-1",
			},
		}),
		RouteNetworkStatus: JSON(http.StatusOK, map[string]interface{}{"network": "amoy", "connected": true}),
		RouteSeed:          JSON(http.StatusOK, map[string]interface{}{"success": true}),
		RouteOverlay: JSON(http.StatusOK, map[string]interface{}{
			"success":         true,
			"certificate_url": "https://files.example.com/cred-1.pdf",
		}),
	}
}

func NewServer(overrides map[string]http.HandlerFunc) (self *Server) {
	self = new(Server)
	self.handlers = defaults()
	for route, h := range overrides {
		self.handlers[route] = h
	}

	mux := http.NewServeMux()
	for route := range self.handlers {
		route := route
		mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
			idx := self.record(r)

			self.mtx.Lock()
			h := self.handlers[route]
			self.mtx.Unlock()

			h(w, r)

			self.mtx.Lock()
			self.requests[idx].Answered = time.Now()
			self.mtx.Unlock()
		})
	}

	self.Server = httptest.NewServer(mux)
	return
}

// Replaces the handler of a route on a running server
func (self *Server) Handle(route string, h http.HandlerFunc) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.handlers[route] = h
}

func (self *Server) record(r *http.Request) int {
	req := Request{
		Received: time.Now(),
		Method:   r.Method,
		Path:     r.URL.Path,
		Header:   r.Header.Clone(),
		Form:     make(map[string]string),
	}

	if err := r.ParseMultipartForm(10 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				req.Form[k] = v[0]
			}
		}
		for k := range r.MultipartForm.File {
			req.File = k
		}
	} else {
		req.Body, _ = io.ReadAll(r.Body)
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.requests = append(self.requests, req)
	return len(self.requests) - 1
}

func (self *Server) Requests() []Request {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	out := make([]Request, len(self.requests))
	copy(out, self.requests)
	return out
}

// Requests sent to the given path, in order
func (self *Server) RequestsTo(path string) (out []Request) {
	for _, r := range self.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return
}

// Paths of all requests, in order
func (self *Server) Paths() (out []string) {
	for _, r := range self.Requests() {
		out = append(out, r.Path)
	}
	return
}
