package server

import "google.golang.org/grpc"

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// AdminRegistrar is implemented by registrars exposing methods that require
// the admin token. Full method names, e.g. "/pkg.Service/Method".
type AdminRegistrar interface {
	AdminMethods() []string
}
