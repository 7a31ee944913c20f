// seed inserts demo data for local testing: workspace "Acme" owned by alice with bob as MEMBER,
// one project with a task assigned to bob, and carol registered outside the workspace.
// Idempotent: skips everything if alice@example.com already exists.
package main

import (
	"context"
	"fmt"
	"log"

	"taskhub/internal/config"
	"taskhub/internal/db"
	identityservice "taskhub/internal/identity/service"
	"taskhub/internal/platform/rbac"
	"taskhub/internal/policy/engine"
	"taskhub/internal/security"
	"taskhub/internal/store"
	taskservice "taskhub/internal/task/service"
	workspaceservice "taskhub/internal/workspace/service"
)

const devPassword = "password123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; export it or add it to .env")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	st := store.NewPostgresStore(conn)
	defer st.Close()

	existing, err := st.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (alice@example.com exists). Skipping.")
		return
	}

	// Tokens are never issued here; the provider only satisfies the service constructor.
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		log.Fatalf("token provider: %v", err)
	}
	auth := identityservice.NewAuthService(st, security.NewHasher(cfg.BcryptCost), tokens, nil, nil)
	authz := rbac.NewAuthorizer(rbac.NewResolver(nil, nil), engine.NewStaticEvaluator(), nil)
	workspaces := workspaceservice.NewService(st, authz, nil, nil, nil)
	tasks := taskservice.NewService(st, authz, nil, nil, nil, nil)

	ids := make(map[string]string)
	for _, name := range []string{"alice", "bob", "carol"} {
		u, err := auth.Register(ctx, name+"@example.com", devPassword, name)
		if err != nil {
			log.Fatalf("register %s: %v", name, err)
		}
		ids[name] = u.ID
	}

	ws, err := workspaces.CreateWorkspace(ctx, ids["alice"], "Acme")
	if err != nil {
		log.Fatalf("create workspace: %v", err)
	}
	if _, err := workspaces.InviteMember(ctx, ws.ID, ids["alice"], "bob@example.com", "MEMBER"); err != nil {
		log.Fatalf("invite bob: %v", err)
	}
	p, err := workspaces.CreateProject(ctx, ws.ID, ids["alice"], "Launch")
	if err != nil {
		log.Fatalf("create project: %v", err)
	}
	if _, err := tasks.CreateTask(ctx, ids["alice"], taskservice.CreateTaskInput{
		ProjectID:  p.ID,
		Title:      "Write release notes",
		Priority:   "HIGH",
		AssigneeID: ids["bob"],
	}); err != nil {
		log.Fatalf("create task: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Logins: alice|bob|carol@example.com / %s\n", devPassword)
	fmt.Printf("Workspace: %s\n", ws.ID)
}
