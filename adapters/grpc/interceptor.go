// Package idverifygrpc provides gRPC interceptors for goIDVerify.
//
// The interceptors extract the ID token from the "authorization" metadata
// key ("Bearer <token>") and delegate verification to an idverify.Client.
// On success, the resulting *common.Identity is injected into the context.
//
// Concurrency: All exported functions are safe for concurrent use.
package idverifygrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/keksclan/goIDVerify/adapters/common"
)

type contextKey struct{}

// IdentityFromContext retrieves the identity stored in the context by the interceptor.
// Returns nil if no identity is present.
func IdentityFromContext(ctx context.Context) *common.Identity {
	v, _ := ctx.Value(contextKey{}).(*common.Identity)
	return v
}

func contextWithIdentity(ctx context.Context, id *common.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Option configures the gRPC interceptors.
type Option = common.Option

var (
	WithRequiredMetadata        = common.WithRequiredMetadata
	WithRequiredMetadataEnabled = common.WithRequiredMetadataEnabled
	WithAttachMetadata          = common.WithAttachMetadata
)

// UnaryServerInterceptor returns a gRPC unary server interceptor that
// authenticates requests with v. On failure it returns codes.Unauthenticated.
func UnaryServerInterceptor(v common.Verifier, opts ...Option) grpc.UnaryServerInterceptor {
	o := common.BuildOptions(opts)
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		newCtx, err := authenticate(ctx, v, o)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

// StreamServerInterceptor authenticates a stream once, before the handler
// runs; the identity is visible through ss.Context() in the handler.
func StreamServerInterceptor(v common.Verifier, opts ...Option) grpc.StreamServerInterceptor {
	o := common.BuildOptions(opts)
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		newCtx, err := authenticate(ss.Context(), v, o)
		if err != nil {
			return err
		}
		return handler(srv, &identityStream{ServerStream: ss, ctx: newCtx})
	}
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *identityStream) Context() context.Context { return w.ctx }

// mdExtractor reads required keys from incoming metadata. MD.Get already
// lower-cases the key.
type mdExtractor metadata.MD

func (m mdExtractor) Get(key string) (string, bool) {
	if vals := metadata.MD(m).Get(key); len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}

func authenticate(ctx context.Context, v common.Verifier, o common.AdapterOptions) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx, status.Error(codes.Unauthenticated, "missing request metadata")
	}
	authHeader, _ := mdExtractor(md).Get("authorization")
	id, err := common.Authenticate(ctx, v, authHeader, mdExtractor(md), o)
	if err != nil {
		return ctx, status.Error(codes.Unauthenticated, common.ErrorMessage(err))
	}
	return contextWithIdentity(ctx, id), nil
}
