package explore

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-matchmaker/internal/app"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "matchmaker.v1.Explore"

// FullMethod returns "/matchmaker.v1.Explore/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// adminMethods require the x-admin-token metadata.
var adminMethods = []string{
	"BanProfile",
	"UnbanProfile",
	"PurgeProfile",
	"ArchiveInactive",
	"GetGlobalStats",
}

// unary adapts a Service method expression to a grpc.MethodDesc, decoding
// into Req and running the server interceptor chain.
func unary[Req, Resp any](name string, call func(*Service, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*Service)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// serviceDesc stands in for generated stubs; messages use the JSON codec.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("Browse", (*Service).Browse),
		unary("CheckRateLimit", (*Service).CheckRateLimit),
		unary("SelectNext", (*Service).SelectNext),
		unary("RecordLike", (*Service).RecordLike),
		unary("RecordSkip", (*Service).RecordSkip),
		unary("Block", (*Service).Block),
		unary("Unblock", (*Service).Unblock),
		unary("IsBlocked", (*Service).IsBlocked),
		unary("ListBlocked", (*Service).ListBlocked),
		unary("CreateMatch", (*Service).CreateMatch),
		unary("DeleteMatch", (*Service).DeleteMatch),
		unary("ListMatches", (*Service).ListMatches),
		unary("ListPendingLikers", (*Service).ListPendingLikers),
		unary("CountPendingLikers", (*Service).CountPendingLikers),
		unary("RegisterProfile", (*Service).RegisterProfile),
		unary("GetProfile", (*Service).GetProfile),
		unary("TouchActivity", (*Service).TouchActivity),
		unary("GetUserStats", (*Service).GetUserStats),
		unary("BanProfile", (*Service).BanProfile),
		unary("UnbanProfile", (*Service).UnbanProfile),
		unary("PurgeProfile", (*Service).PurgeProfile),
		unary("ArchiveInactive", (*Service).ArchiveInactive),
		unary("GetGlobalStats", (*Service).GetGlobalStats),
	},
	Metadata: "matchmaker/v1/explore",
}

// Registrar ties the Explore service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Explore service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Explore service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(&serviceDesc, NewExploreService(r.appCtx))
}

// AdminMethods lists the full method names guarded by the admin token.
func (r *Registrar) AdminMethods() []string {
	out := make([]string, 0, len(adminMethods))
	for _, m := range adminMethods {
		out = append(out, FullMethod(m))
	}
	return out
}
