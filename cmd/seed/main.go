package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"funprofile/internal/bootstrap"
	"funprofile/internal/seed"
)

func main() {
	users := flag.Int("users", 10, "number of users to create")
	posts := flag.Int("posts", 5, "posts per user")
	flag.Parse()

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx)
	if err != nil {
		slog.Error("failed to initialize runtime", "error", err)
		os.Exit(1)
	}

	if err := seed.Run(ctx, rt.DB, *users, *posts); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}
