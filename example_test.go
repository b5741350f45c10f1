package goDash_test

import (
	"context"
	"fmt"

	goDash "github.com/MrEthical07/goDash"
	"github.com/MrEthical07/goDash/guard"
	"github.com/MrEthical07/goDash/session"
)

func exampleConfig() goDash.Config {
	cfg := goDash.DefaultConfig()
	cfg.Session.Backend = goDash.BackendMemory
	return cfg
}

// ExampleNew builds a Manager over a SQLite file and restores whatever
// session it holds.
func ExampleNew() {
	cfg := goDash.DefaultConfig()
	cfg.Session.SQLitePath = "godash-session.db"

	mgr, err := goDash.New().WithConfig(cfg).Build()
	if err != nil {
		return
	}
	defer mgr.Close()
	_, _ = mgr.Current()
}

func ExampleManager_Subscribe() {
	mgr, _ := goDash.New().WithConfig(exampleConfig()).Build()
	defer mgr.Close()

	mgr.Subscribe(func(t goDash.Transition) {
		fmt.Printf("%d %s -> %s (%s)\n", t.Seq, t.From, t.To, t.Reason)
	})

	ctx := context.Background()
	_ = mgr.Login(ctx, "token-1", &session.Identity{ID: 1, Email: "user1@example.com"})
	_ = mgr.Logout(ctx)
	_ = mgr.Logout(ctx)

	// Output:
	// 1 anonymous -> authenticated (login)
	// 2 authenticated -> anonymous (logout)
}

func ExampleManager_Invalidate() {
	mgr, _ := goDash.New().WithConfig(exampleConfig()).Build()
	defer mgr.Close()

	ctx := context.Background()
	_ = mgr.Login(ctx, "old", &session.Identity{ID: 1, Email: "user1@example.com"})
	_ = mgr.Login(ctx, "new", &session.Identity{ID: 1, Email: "user1@example.com"})

	fmt.Println(mgr.Invalidate(ctx, "old"))
	fmt.Println(mgr.Invalidate(ctx, "new"))
	fmt.Println(mgr.State())

	// Output:
	// false
	// true
	// anonymous
}

func ExampleManager_SetNavigator() {
	mgr, _ := goDash.New().WithConfig(exampleConfig()).Build()
	defer mgr.Close()

	router := guard.Attach(mgr, guard.NewPolicy("/", "/"), guard.WithOnDecision(func(d guard.Decision) {
		fmt.Println(d.Action, d.View)
	}))
	defer router.Close()

	ctx := context.Background()
	_ = mgr.Login(ctx, "token-1", &session.Identity{ID: 1, Email: "user1@example.com"})
	router.Navigate("/dashboard/team")
	_ = mgr.Logout(ctx)

	// Output:
	// render /
	// render /dashboard/team
	// render /
}
