package inspect

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified inspector service name, also used for
// its health status.
const ServiceName = "seabattle.match.v1.MatchInspector"

// Full method names.
const (
	GetPlayerMatchMethod     = "/" + ServiceName + "/GetPlayerMatch"
	ListMatchesMethod        = "/" + ServiceName + "/ListMatches"
	ListPlayerOutcomesMethod = "/" + ServiceName + "/ListPlayerOutcomes"
)

// InspectorServer is the server API for the match inspector. Messages are
// protobuf well-known types so no generated code is needed.
type InspectorServer interface {
	GetPlayerMatch(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListMatches(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	ListPlayerOutcomes(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// RegisterInspectorServer registers srv on s.
func RegisterInspectorServer(s grpc.ServiceRegistrar, srv InspectorServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InspectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPlayerMatch", Handler: getPlayerMatchHandler},
		{MethodName: "ListMatches", Handler: listMatchesHandler},
		{MethodName: "ListPlayerOutcomes", Handler: listPlayerOutcomesHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func getPlayerMatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).GetPlayerMatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetPlayerMatchMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InspectorServer).GetPlayerMatch(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listMatchesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).ListMatches(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListMatchesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InspectorServer).ListMatches(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func listPlayerOutcomesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).ListPlayerOutcomes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListPlayerOutcomesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InspectorServer).ListPlayerOutcomes(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the inspector over a client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates an inspector client.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// GetPlayerMatch returns the match the player is registered in.
func (c *Client) GetPlayerMatch(ctx context.Context, playerID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetPlayerMatchMethod, wrapperspb.String(playerID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMatches returns every registered match.
func (c *Client) ListMatches(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListMatchesMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPlayerOutcomes returns the recorded outcomes of the player's matches.
func (c *Client) ListPlayerOutcomes(ctx context.Context, playerID string, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListPlayerOutcomesMethod, wrapperspb.String(playerID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
