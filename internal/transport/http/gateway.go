// Package http maps the REST surface onto the gRPC services. Every request
// is forwarded over a gRPC client so auth and role checks run in one place.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"constructedge/internal/domain"
	"constructedge/internal/middleware"
	transport "constructedge/internal/transport/grpc"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type Invoker interface {
	Invoke(ctx context.Context, service, method string, req, resp interface{}) error
}

type Gateway struct {
	public   Invoker
	internal Invoker
	mux      *runtime.ServeMux
}

func NewGateway(public, internal Invoker) (*Gateway, error) {
	g := &Gateway{public: public, internal: internal, mux: runtime.NewServeMux()}
	if err := g.routes(); err != nil {
		return nil, err
	}
	return g, nil
}

// Handler wraps the gateway in CORS handling for the given origins.
func (g *Gateway) Handler(origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key", "traceparent"},
	}).Handler(g.mux)
}

type binder[Req any] func(r *http.Request, params map[string]string, req *Req) error

type route struct {
	method, path string
	handler      runtime.HandlerFunc
}

func (g *Gateway) routes() error {
	pub := func(rpc string) (Invoker, string, string) {
		return g.public, transport.AuthServiceName, rpc
	}
	wf := func(rpc string) (Invoker, string, string) {
		return g.internal, transport.WorkforceServiceName, rpc
	}

	routes := []route{
		{"POST", "/api/auth/register", unaryT[transport.RegisterRequest, any](body[transport.RegisterRequest])(pub("Register"))},
		{"POST", "/api/auth/login", unaryT[transport.LoginRequest, any](body[transport.LoginRequest])(pub("Login"))},
		{"GET", "/api/auth/send-otp", unaryT[transport.SendOtpRequest, transport.MessageResponse](query(func(r *http.Request, req *transport.SendOtpRequest) {
			req.Email = r.URL.Query().Get("email")
		}))(pub("SendOtp"))},
		{"POST", "/api/auth/verify-otp", unaryT[transport.VerifyOtpRequest, transport.MessageResponse](body[transport.VerifyOtpRequest])(pub("VerifyOtp"))},
		{"POST", "/api/auth/reset-password", unaryT[transport.ResetPasswordRequest, transport.MessageResponse](body[transport.ResetPasswordRequest])(pub("ResetPassword"))},
		{"POST", "/api/auth/revalidate", unaryT[transport.Empty, transport.TokenResponse](nil)(pub("Revalidate"))},
		{"POST", "/api/auth/logout", unaryT[transport.Empty, transport.MessageResponse](nil)(pub("Logout"))},
		{"GET", "/api/auth/profile", unaryT[transport.Empty, transport.PrincipalView](nil)(wf("GetProfile"))},
		// legacy per-role login paths resolve through the same precedence order
		{"POST", "/api/employees/login", unaryT[transport.LoginRequest, any](body[transport.LoginRequest])(pub("Login"))},
		{"POST", "/api/managers/login", unaryT[transport.LoginRequest, any](body[transport.LoginRequest])(pub("Login"))},

		{"GET", "/api/users", unaryT[transport.ListUsersRequest, transport.ListUsersResponse](query(func(r *http.Request, req *transport.ListUsersRequest) {
			q := r.URL.Query()
			req.Page, _ = strconv.Atoi(q.Get("page"))
			req.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
			req.EmailFilter = q.Get("email")
		}))(wf("ListUsers"))},
		{"POST", "/api/users/{id}/ban", unaryT[transport.BanUserRequest, transport.MessageResponse](bodyWith(func(p map[string]string, req *transport.BanUserRequest) {
			req.UserID = p["id"]
		}))(wf("BanUser"))},

		{"POST", "/api/tasks", unaryT[transport.TaskRequest, any](body[transport.TaskRequest])(wf("CreateTask"))},
		{"GET", "/api/tasks", unaryT[transport.Empty, transport.TaskList](nil)(wf("ListTasks"))},
		{"GET", "/api/tasks/stats", unaryT[transport.Empty, any](nil)(wf("TaskStats"))},
		{"GET", "/api/tasks/status/{status}", unaryT[transport.StatusRequest, transport.TaskList](path(func(p map[string]string, req *transport.StatusRequest) {
			req.Status = domainStatus(p["status"])
		}))(wf("TasksByStatus"))},
		{"PUT", "/api/tasks/{id}", unaryT[transport.TaskRequest, any](bodyWith(func(p map[string]string, req *transport.TaskRequest) {
			req.ID = p["id"]
		}))(wf("UpdateTask"))},
		{"DELETE", "/api/tasks/{id}", unaryT[transport.IDRequest, transport.MessageResponse](pathID)(wf("DeleteTask"))},

		{"POST", "/api/projects", unaryT[transport.ProjectRequest, any](body[transport.ProjectRequest])(wf("CreateProject"))},
		{"GET", "/api/projects", unaryT[transport.Empty, transport.ProjectList](nil)(wf("ListProjects"))},
		{"POST", "/api/projects/recalculate", unaryT[transport.Empty, transport.ProgressList](nil)(wf("RecalculateProgress"))},
		{"GET", "/api/projects/{id}", unaryT[transport.IDRequest, any](pathID)(wf("GetProject"))},
		{"PUT", "/api/projects/{id}", unaryT[transport.ProjectRequest, any](bodyWith(func(p map[string]string, req *transport.ProjectRequest) {
			req.ID = p["id"]
		}))(wf("UpdateProject"))},
		{"DELETE", "/api/projects/{id}", unaryT[transport.IDRequest, transport.MessageResponse](pathID)(wf("DeleteProject"))},
		{"GET", "/api/projects/{id}/employees", unaryT[transport.IDRequest, transport.EmployeeList](pathID)(wf("ProjectEmployees"))},
		{"POST", "/api/projects/{id}/employees", unaryT[transport.AssignRequest, any](idList)(wf("AssignEmployees"))},
		{"PUT", "/api/projects/{id}/materials", unaryT[transport.AssignRequest, any](idList)(wf("AssignMaterials"))},
		{"GET", "/api/projects/{id}/tasks", unaryT[transport.IDRequest, transport.TaskList](pathID)(wf("TasksByProject"))},
		{"POST", "/api/projects/{id}/reconcile", unaryT[transport.IDRequest, any](pathID)(wf("ReconcileProject"))},
		{"GET", "/api/managers/projects/{id}", unaryT[transport.IDRequest, transport.ProjectList](pathID)(wf("ProjectsByManager"))},
		{"GET", "/api/managers/tasks/{id}", unaryT[transport.IDRequest, transport.TaskList](pathID)(wf("TasksByProject"))},
		{"GET", "/api/reports/projects", g.exportProjects},

		{"POST", "/api/employees", unaryT[transport.EmployeeRequest, any](body[transport.EmployeeRequest])(wf("CreateEmployee"))},
		{"GET", "/api/employees", unaryT[transport.Empty, transport.EmployeeList](nil)(wf("ListEmployees"))},
		{"GET", "/api/employees/{id}", unaryT[transport.IDRequest, any](pathID)(wf("GetEmployee"))},
		{"PUT", "/api/employees/{id}", unaryT[transport.EmployeeRequest, any](bodyWith(func(p map[string]string, req *transport.EmployeeRequest) {
			req.ID = p["id"]
		}))(wf("UpdateEmployee"))},
		{"DELETE", "/api/employees/{id}", unaryT[transport.IDRequest, transport.MessageResponse](pathID)(wf("DeleteEmployee"))},

		{"POST", "/api/roles", unaryT[transport.RoleRequest, any](body[transport.RoleRequest])(wf("CreateRole"))},
		{"GET", "/api/roles", unaryT[transport.Empty, transport.RoleList](nil)(wf("ListRoles"))},
		{"POST", "/api/materials", unaryT[transport.MaterialRequest, any](body[transport.MaterialRequest])(wf("CreateMaterial"))},
		{"GET", "/api/materials", unaryT[transport.Empty, transport.MaterialList](nil)(wf("ListMaterials"))},
		{"POST", "/api/inventory", unaryT[transport.InventoryRequest, any](body[transport.InventoryRequest])(wf("CreateInventory"))},
		{"GET", "/api/inventory", unaryT[transport.Empty, transport.InventoryList](nil)(wf("ListInventory"))},
		{"PUT", "/api/inventory/{id}", unaryT[transport.InventoryRequest, any](bodyWith(func(p map[string]string, req *transport.InventoryRequest) {
			req.ID = p["id"]
		}))(wf("UpdateInventory"))},
		{"DELETE", "/api/inventory/{id}", unaryT[transport.IDRequest, transport.MessageResponse](pathID)(wf("DeleteInventory"))},
		{"POST", "/api/customers", unaryT[transport.CustomerRequest, any](body[transport.CustomerRequest])(wf("CreateCustomer"))},
		{"GET", "/api/customers", unaryT[transport.Empty, transport.CustomerList](nil)(wf("ListCustomers"))},
		{"POST", "/api/admins", unaryT[transport.ProfileRequest, any](body[transport.ProfileRequest])(wf("CreateAdmin"))},
		{"GET", "/api/admins", unaryT[transport.Empty, transport.AdminList](nil)(wf("ListAdmins"))},
		{"POST", "/api/managers", unaryT[transport.ProfileRequest, any](body[transport.ProfileRequest])(wf("CreateManager"))},
		{"GET", "/api/managers", unaryT[transport.Empty, transport.ManagerList](nil)(wf("ListManagers"))},

		{"GET", "/api/dashboard/stats", unaryT[transport.Empty, any](nil)(wf("DashboardStats"))},
		{"GET", "/api/dashboard/company-stats", unaryT[transport.Empty, any](nil)(wf("CompanyStats"))},
		{"GET", "/api/company/stats", unaryT[transport.Empty, any](nil)(wf("CompanyStats"))},
	}

	for _, r := range routes {
		if err := g.mux.HandlePath(r.method, r.path, r.handler); err != nil {
			return fmt.Errorf("register %s %s: %w", r.method, r.path, err)
		}
	}
	return nil
}

// unaryT binds the HTTP request into Req, invokes the RPC and writes Resp.
func unaryT[Req any, Resp any](bind binder[Req]) func(Invoker, string, string) runtime.HandlerFunc {
	return func(inv Invoker, service, rpc string) runtime.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			req := new(Req)
			if bind != nil {
				if err := bind(r, params, req); err != nil {
					writeError(w, status.Error(codes.InvalidArgument, err.Error()))
					return
				}
			}
			resp := new(Resp)
			if err := inv.Invoke(outgoingContext(r), service, rpc, req, resp); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, resp)
		}
	}
}

func body[Req any](r *http.Request, _ map[string]string, req *Req) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func bodyWith[Req any](set func(map[string]string, *Req)) binder[Req] {
	return func(r *http.Request, params map[string]string, req *Req) error {
		if err := body(r, params, req); err != nil {
			return err
		}
		set(params, req)
		return nil
	}
}

func path[Req any](set func(map[string]string, *Req)) binder[Req] {
	return func(_ *http.Request, params map[string]string, req *Req) error {
		set(params, req)
		return nil
	}
}

func query[Req any](set func(*http.Request, *Req)) binder[Req] {
	return func(r *http.Request, _ map[string]string, req *Req) error {
		set(r, req)
		return nil
	}
}

func domainStatus(s string) domain.TaskStatus {
	return domain.TaskStatus(strings.ToUpper(s))
}

func pathID(_ *http.Request, params map[string]string, req *transport.IDRequest) error {
	req.ID = params["id"]
	return nil
}

// idList accepts either a bare JSON array of ids or {"ids": [...]}.
func idList(r *http.Request, params map[string]string, req *transport.AssignRequest) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := json.Unmarshal(raw, &req.IDs); err != nil {
		if err := json.Unmarshal(raw, req); err != nil {
			return fmt.Errorf("expected a list of ids: %w", err)
		}
	}
	req.ID = params["id"]
	return nil
}

func (g *Gateway) exportProjects(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var resp transport.ExportResponse
	if err := g.internal.Invoke(outgoingContext(r), transport.WorkforceServiceName, "ExportProjects", &transport.Empty{}, &resp); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Content)
}

var forwardedHeaders = map[string]string{
	"Authorization":   "authorization",
	"Idempotency-Key": middleware.IdempotencyHeader,
	"Traceparent":     "traceparent",
}

func outgoingContext(r *http.Request) context.Context {
	md := metadata.MD{}
	for header, key := range forwardedHeaders {
		if v := r.Header.Get(header); v != "" {
			md.Set(key, v)
		}
	}
	return metadata.NewOutgoingContext(r.Context(), md)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	writeJSON(w, runtime.HTTPStatusFromCode(st.Code()), errorBody{Error: st.Message(), Code: st.Code().String()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
