package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	AuthServiceName      = "constructedge.v1.AuthService"
	WorkforceServiceName = "constructedge.v1.WorkforceService"
)

func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// CredentialMethods are the AuthService calls whose result depends on a
// secret in the request. They must never be answered from a response cache.
func CredentialMethods() []string {
	return []string{
		FullMethod(AuthServiceName, "Login"),
		FullMethod(AuthServiceName, "VerifyOtp"),
		FullMethod(AuthServiceName, "ResetPassword"),
		FullMethod(AuthServiceName, "Revalidate"),
		FullMethod(AuthServiceName, "Logout"),
	}
}

// unary builds a method descriptor that decodes Req, runs the interceptor
// chain and dispatches to call on the registered server S.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(service, method),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "Register", (*PublicServer).Register),
		unary(AuthServiceName, "Login", (*PublicServer).Login),
		unary(AuthServiceName, "SendOtp", (*PublicServer).SendOtp),
		unary(AuthServiceName, "VerifyOtp", (*PublicServer).VerifyOtp),
		unary(AuthServiceName, "ResetPassword", (*PublicServer).ResetPassword),
		unary(AuthServiceName, "Revalidate", (*PublicServer).Revalidate),
		unary(AuthServiceName, "Logout", (*PublicServer).Logout),
	},
	Metadata: "constructedge/v1/auth",
}

func RegisterPublicServer(s grpc.ServiceRegistrar, srv *PublicServer) {
	s.RegisterService(&authServiceDesc, srv)
}

var workforceServiceDesc = grpc.ServiceDesc{
	ServiceName: WorkforceServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		unary(WorkforceServiceName, "GetProfile", (*InternalServer).GetProfile),
		unary(WorkforceServiceName, "BanUser", (*InternalServer).BanUser),
		unary(WorkforceServiceName, "ListUsers", (*InternalServer).ListUsers),

		unary(WorkforceServiceName, "CreateTask", (*InternalServer).CreateTask),
		unary(WorkforceServiceName, "UpdateTask", (*InternalServer).UpdateTask),
		unary(WorkforceServiceName, "DeleteTask", (*InternalServer).DeleteTask),
		unary(WorkforceServiceName, "ListTasks", (*InternalServer).ListTasks),
		unary(WorkforceServiceName, "TasksByStatus", (*InternalServer).TasksByStatus),
		unary(WorkforceServiceName, "TasksByProject", (*InternalServer).TasksByProject),
		unary(WorkforceServiceName, "TaskStats", (*InternalServer).TaskStats),
		unary(WorkforceServiceName, "ReconcileProject", (*InternalServer).ReconcileProject),
		unary(WorkforceServiceName, "RecalculateProgress", (*InternalServer).RecalculateProgress),

		unary(WorkforceServiceName, "CreateProject", (*InternalServer).CreateProject),
		unary(WorkforceServiceName, "UpdateProject", (*InternalServer).UpdateProject),
		unary(WorkforceServiceName, "DeleteProject", (*InternalServer).DeleteProject),
		unary(WorkforceServiceName, "GetProject", (*InternalServer).GetProject),
		unary(WorkforceServiceName, "ListProjects", (*InternalServer).ListProjects),
		unary(WorkforceServiceName, "ProjectEmployees", (*InternalServer).ProjectEmployees),
		unary(WorkforceServiceName, "AssignEmployees", (*InternalServer).AssignEmployees),
		unary(WorkforceServiceName, "AssignMaterials", (*InternalServer).AssignMaterials),
		unary(WorkforceServiceName, "ProjectsByManager", (*InternalServer).ProjectsByManager),
		unary(WorkforceServiceName, "ExportProjects", (*InternalServer).ExportProjects),

		unary(WorkforceServiceName, "CreateEmployee", (*InternalServer).CreateEmployee),
		unary(WorkforceServiceName, "UpdateEmployee", (*InternalServer).UpdateEmployee),
		unary(WorkforceServiceName, "DeleteEmployee", (*InternalServer).DeleteEmployee),
		unary(WorkforceServiceName, "GetEmployee", (*InternalServer).GetEmployee),
		unary(WorkforceServiceName, "ListEmployees", (*InternalServer).ListEmployees),

		unary(WorkforceServiceName, "CreateRole", (*InternalServer).CreateRole),
		unary(WorkforceServiceName, "ListRoles", (*InternalServer).ListRoles),
		unary(WorkforceServiceName, "CreateMaterial", (*InternalServer).CreateMaterial),
		unary(WorkforceServiceName, "ListMaterials", (*InternalServer).ListMaterials),
		unary(WorkforceServiceName, "CreateInventory", (*InternalServer).CreateInventory),
		unary(WorkforceServiceName, "UpdateInventory", (*InternalServer).UpdateInventory),
		unary(WorkforceServiceName, "DeleteInventory", (*InternalServer).DeleteInventory),
		unary(WorkforceServiceName, "ListInventory", (*InternalServer).ListInventory),
		unary(WorkforceServiceName, "CreateCustomer", (*InternalServer).CreateCustomer),
		unary(WorkforceServiceName, "ListCustomers", (*InternalServer).ListCustomers),
		unary(WorkforceServiceName, "CreateAdmin", (*InternalServer).CreateAdmin),
		unary(WorkforceServiceName, "ListAdmins", (*InternalServer).ListAdmins),
		unary(WorkforceServiceName, "CreateManager", (*InternalServer).CreateManager),
		unary(WorkforceServiceName, "ListManagers", (*InternalServer).ListManagers),

		unary(WorkforceServiceName, "DashboardStats", (*InternalServer).DashboardStats),
		unary(WorkforceServiceName, "CompanyStats", (*InternalServer).CompanyStats),
	},
	Metadata: "constructedge/v1/workforce",
}

func RegisterInternalServer(s grpc.ServiceRegistrar, srv *InternalServer) {
	s.RegisterService(&workforceServiceDesc, srv)
}
