package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"funprofile/internal/bootstrap"
	"funprofile/internal/cache"
	"funprofile/internal/repository"
	"funprofile/internal/server"
	"funprofile/internal/service"
	"funprofile/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.InitRuntime(ctx)
	if err != nil {
		slog.Error("failed to initialize runtime", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rt.ShutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	mediaBucket, err := storage.NewMinioBucket(ctx, rt.Config, rt.Config.MediaBucket)
	if err != nil {
		slog.Error("failed to connect media bucket", "error", err)
		os.Exit(1)
	}
	avatarBucket, err := storage.NewMinioBucket(ctx, rt.Config, rt.Config.AvatarBucket)
	if err != nil {
		slog.Error("failed to connect avatar bucket", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(rt.DB)
	posts := repository.NewPostRepository(rt.DB)
	profiles := repository.NewProfileRepository(rt.DB)
	wallets := repository.NewWalletRepository(rt.DB)
	friendships := repository.NewFriendshipRepository(rt.DB)

	postService := service.NewPostService(posts, profiles, mediaBucket)
	profileService := service.NewProfileService(profiles, avatarBucket)
	walletService := service.NewWalletService(wallets, profiles, rt.Config)

	honorJob := service.NewHonorJob(profiles)
	if err := honorJob.Start(); err != nil {
		slog.Error("failed to start honor job", "error", err)
		os.Exit(1)
	}
	defer honorJob.Stop()

	srv := server.NewServer(server.Deps{
		Config:         rt.Config,
		DB:             rt.DB,
		Redis:          cache.GetClient(),
		Users:          users,
		Posts:          posts,
		Profiles:       profiles,
		Wallets:        wallets,
		Friendships:    friendships,
		PostService:    postService,
		ProfileService: profileService,
		WalletService:  walletService,
	})

	slog.Info("server starting", "port", rt.Config.Port, "env", rt.Config.Env)
	if err := srv.Start(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

