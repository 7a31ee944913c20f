package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	taskhubv1 "taskhub/api/taskhub/v1"
	"taskhub/internal/platform/rbac"
	"taskhub/internal/policy/engine"
	"taskhub/internal/server/interceptors"
	"taskhub/internal/store"
	userdomain "taskhub/internal/user/domain"
	workspaceservice "taskhub/internal/workspace/service"
)

// identityFromMetadata stands in for the auth interceptor: the caller id travels as x-user-id.
func identityFromMetadata(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if userID, ok := metadataUser(ctx); ok {
		ctx = interceptors.WithIdentity(ctx, userID)
	}
	return handler(ctx, req)
}

func metadataUser(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok || len(md.Get("x-user-id")) == 0 {
		return "", false
	}
	return md.Get("x-user-id")[0], true
}

func asUser(userID string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "x-user-id", userID)
}

type fixture struct {
	client      taskhubv1.ProjectServiceClient
	workspaceID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	for _, id := range []string{"alice", "bob", "carol"} {
		if err := st.CreateUser(ctx, &userdomain.User{ID: id, Email: id + "@example.com", CreatedAt: time.Now()}); err != nil {
			t.Fatalf("CreateUser(%s): %v", id, err)
		}
	}
	authz := rbac.NewAuthorizer(rbac.NewResolver(nil, nil), engine.NewStaticEvaluator(), nil)
	svc := workspaceservice.NewService(st, authz, nil, nil, nil)
	ws, err := svc.CreateWorkspace(ctx, "alice", "W")
	if err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}
	if _, err := svc.InviteMember(ctx, ws.ID, "alice", "bob@example.com", "MEMBER"); err != nil {
		t.Fatalf("InviteMember: %v", err)
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(identityFromMetadata))
	taskhubv1.RegisterProjectServiceServer(s, NewServer(svc))
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(taskhubv1.CallOption()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		s.Stop()
	})
	return &fixture{client: taskhubv1.NewProjectServiceClient(conn), workspaceID: ws.ID}
}

func TestProjectService_RoundTrip(t *testing.T) {
	f := newFixture(t)

	created, err := f.client.CreateProject(asUser("alice"), &taskhubv1.CreateProjectRequest{WorkspaceID: f.workspaceID, Name: " Roadmap "})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if created.Project.Name != "Roadmap" || created.Project.WorkspaceID != f.workspaceID {
		t.Errorf("project = %+v, want Roadmap in %s", created.Project, f.workspaceID)
	}
	if created.Project.CreatedAt.IsZero() {
		t.Error("created_at should survive the JSON codec")
	}

	got, err := f.client.GetProject(asUser("bob"), &taskhubv1.GetProjectRequest{ProjectID: created.Project.ID})
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Project.ID != created.Project.ID {
		t.Errorf("id = %q, want %q", got.Project.ID, created.Project.ID)
	}

	list, err := f.client.ListProjects(asUser("bob"), &taskhubv1.ListProjectsRequest{WorkspaceID: f.workspaceID})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list.Projects) != 1 {
		t.Errorf("projects = %d, want 1", len(list.Projects))
	}
}

func TestProjectService_ErrorCodes(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		ctx  context.Context
		req  *taskhubv1.CreateProjectRequest
		want codes.Code
	}{
		{"no identity", context.Background(), &taskhubv1.CreateProjectRequest{WorkspaceID: f.workspaceID, Name: "P"}, codes.Unauthenticated},
		{"member", asUser("bob"), &taskhubv1.CreateProjectRequest{WorkspaceID: f.workspaceID, Name: "P"}, codes.PermissionDenied},
		{"non-member", asUser("carol"), &taskhubv1.CreateProjectRequest{WorkspaceID: f.workspaceID, Name: "P"}, codes.PermissionDenied},
		{"empty name", asUser("alice"), &taskhubv1.CreateProjectRequest{WorkspaceID: f.workspaceID, Name: " "}, codes.InvalidArgument},
		{"unknown workspace", asUser("alice"), &taskhubv1.CreateProjectRequest{WorkspaceID: "missing", Name: "P"}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.client.CreateProject(tt.ctx, tt.req)
			if got := status.Code(err); got != tt.want {
				t.Errorf("code = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServer_NilService(t *testing.T) {
	srv := NewServer(nil)
	ctx := interceptors.WithIdentity(context.Background(), "alice")
	if _, err := srv.ListProjects(ctx, &taskhubv1.ListProjectsRequest{}); status.Code(err) != codes.Unimplemented {
		t.Errorf("ListProjects code = %v, want %v", status.Code(err), codes.Unimplemented)
	}
}
