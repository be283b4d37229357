package main

import (
	"context"
	"log"
	"time"

	"campus-connect/simulator"
)

func main() {
	config := simulator.SimConfig{
		NumUsers:         10,
		NumPosts:         20,
		SimulationTime:   10 * time.Minute,
		MessageFrequency: 0.4,
		LikeFrequency:    0.3,
		CommentFrequency: 0.2,
		ReadRate:         0.5,
		EngineURL:        "http://localhost:8080",
	}

	sim := simulator.NewSimulator(config)
	ctx, cancel := context.WithTimeout(context.Background(), config.SimulationTime)
	defer cancel()

	log.Printf("Starting simulation with configuration:")
	log.Printf("- Engine URL: %s", config.EngineURL)
	log.Printf("- Number of members: %d", config.NumUsers)
	log.Printf("- Number of seed posts: %d", config.NumPosts)
	log.Printf("- Simulation time: %v", config.SimulationTime)
	log.Printf("- Message frequency: %.2f per tick", config.MessageFrequency)
	log.Printf("- Like frequency: %.2f per tick", config.LikeFrequency)
	log.Printf("- Comment frequency: %.2f per tick", config.CommentFrequency)
	log.Printf("- Read rate: %.2f", config.ReadRate)

	if err := sim.Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	metrics := sim.GetMetrics()
	log.Printf("\nSimulation completed. Final metrics:")
	log.Printf("- Total members: %d", metrics.TotalUsers)
	log.Printf("- Total messages: %d", metrics.TotalMessages)
	log.Printf("- Total likes: %d", metrics.TotalLikes)
	log.Printf("- Total comments: %d", metrics.TotalComments)
	log.Printf("- Notifications read: %d", metrics.NotificationsRead)
	log.Printf("- Error count: %d", metrics.ErrorCount)
}
