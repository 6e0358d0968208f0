package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mycguo/autogen-multi-agent-workflow/api"
	"github.com/mycguo/autogen-multi-agent-workflow/config"
	"github.com/mycguo/autogen-multi-agent-workflow/dedup"
	"github.com/mycguo/autogen-multi-agent-workflow/events"
	"github.com/mycguo/autogen-multi-agent-workflow/imagegen"
	"github.com/mycguo/autogen-multi-agent-workflow/pipeline"
	"github.com/mycguo/autogen-multi-agent-workflow/publish"
	"github.com/mycguo/autogen-multi-agent-workflow/script"
	"github.com/mycguo/autogen-multi-agent-workflow/state"
	"github.com/mycguo/autogen-multi-agent-workflow/storage"
	"github.com/mycguo/autogen-multi-agent-workflow/topics"
	"github.com/mycguo/autogen-multi-agent-workflow/video"
	"github.com/mycguo/autogen-multi-agent-workflow/voiceover"
	"github.com/mycguo/autogen-multi-agent-workflow/workflow"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Parse command-line flags
	configPath := flag.String("config", "shorts.yaml", "Path to the YAML config file")
	port := flag.String("port", "", "HTTP API port (overrides config)")
	cronSchedule := flag.String("cron", "", "Cron schedule for automated runs (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	secrets := config.LoadSecrets()

	if *port != "" {
		cfg.Server.Port = *port
	}
	if *cronSchedule != "" {
		cfg.Schedule.Cron = *cronSchedule
	}

	// Create state manager
	stateManager := state.NewManager()

	// Stage clients for the generation pipeline
	pipelineConfig := pipeline.Config{
		Chat: script.NewOpenAIClient(secrets.OpenAIKey, "", config.ScriptModel),
		TTS: voiceover.NewElevenLabsClient(voiceover.ElevenLabsConfig{
			APIKey:  secrets.ElevenLabsKey,
			BaseURL: config.ElevenLabsBaseURL,
			VoiceID: config.TTSVoiceID,
			ModelID: config.TTSModelID,
		}),
		Imager: imagegen.NewStabilityClient(imagegen.StabilityConfig{
			APIKey:   secrets.StabilityKey,
			Endpoint: config.StabilityEndpoint,
		}),
		Assembler: video.NewFFmpegAssembler(),
		WorkDir:   cfg.Pipeline.WorkDir,
	}

	// Topic deduplication (optional: needs Redis and a Cohere key)
	var checker workflow.TopicChecker
	var deduplicator *dedup.Deduplicator
	if cfg.Redis.Addr != "" && secrets.CohereKey != "" {
		store, err := dedup.NewRedisTopicStore(dedup.RedisStoreConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			fmt.Printf("Failed to connect topic store (dedup disabled): %v\n", err)
		} else {
			bloom, err := dedup.NewBloom(dedup.BloomConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Key:      cfg.Redis.BloomKey,
			})
			if err != nil {
				fmt.Printf("Failed to create bloom filter (fast path disabled): %v\n", err)
				bloom = nil
			}
			embeddings := dedup.NewCohereEmbeddings(secrets.CohereKey, "")
			deduplicator = dedup.New(embeddings, store, bloom, 0)
			checker = deduplicator
		}
	}

	// Run archive (optional: needs a bucket)
	var archiver workflow.RunArchiver
	if cfg.S3.Bucket != "" {
		s3Client, err := storage.NewS3(context.Background(), storage.S3Config{
			Region:       cfg.S3.Region,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			fmt.Printf("Failed to create S3 client (archive disabled): %v\n", err)
		} else {
			archiver = storage.NewArchiver(s3Client, cfg.S3.Bucket, cfg.S3.Prefix)
		}
	}

	// YouTube uploads (optional: needs service account credentials)
	var uploader workflow.VideoPublisher
	if cfg.YouTube.Enabled {
		yt, err := publish.NewUploader(cfg.YouTube.CredentialsFile, cfg.YouTube.Privacy)
		if err != nil {
			fmt.Printf("Failed to create YouTube uploader (publishing disabled): %v\n", err)
		} else {
			uploader = yt
		}
	}

	// Result events (optional: needs Kafka brokers)
	var publisher events.Publisher
	var producer *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = events.NewProducer(events.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ResultTopic,
		})
		if err != nil {
			fmt.Printf("Failed to create Kafka producer (result events disabled): %v\n", err)
		} else {
			publisher = producer
		}
	}

	// Create workflow runner
	workflowRunner := workflow.NewRunner(workflow.Config{
		States:    stateManager,
		Pipeline:  pipelineConfig,
		Dedup:     checker,
		Publisher: publisher,
		Archiver:  archiver,
		Uploader:  uploader,
	})

	// Run requests over Kafka (optional: needs Kafka brokers)
	var kafkaConsumer *events.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaConsumer, err = events.NewConsumer(events.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.RequestTopic,
			GroupID: cfg.Kafka.GroupID,
			Handler: &events.TypedMessageHandler[events.RunRequest]{
				Validate: func(msg *events.RunRequest) bool {
					return msg.Topic != ""
				},
				Process: func(ctx context.Context, msg *events.RunRequest) error {
					if msg.RequestID != "" {
						log.Printf("📨 Kafka request %s: %s", msg.RequestID, msg.Topic)
					}
					status, err := workflowRunner.Submit(ctx, workflow.Request{
						Topic:     msg.Topic,
						SourceURL: msg.SourceURL,
						Publish:   msg.Publish,
					})
					switch {
					case errors.Is(err, workflow.ErrDuplicateTopic):
						log.Printf("Skipping duplicate topic from Kafka: %v", err)
						return nil
					case errors.Is(err, state.ErrRunActive):
						// Leave the offset unmarked so the request is
						// redelivered once the current run finishes.
						return err
					case err != nil:
						log.Printf("Dropping bad Kafka request: %v", err)
						return nil
					}
					log.Printf("📥 Run %s accepted from Kafka: %s", status.ID, status.Topic)
					return nil
				},
				// Malformed payloads are marked rather than retried.
				AlwaysMark: true,
			},
		})
		if err != nil {
			fmt.Printf("Failed to create Kafka consumer: %v\n", err)
		} else if err := kafkaConsumer.Start(context.Background()); err != nil {
			fmt.Printf("Failed to start Kafka consumer: %v\n", err)
		}
	}

	// Create and start API server
	apiServer := api.NewServer(api.ServerConfig{
		Port:         cfg.Server.Port,
		States:       stateManager,
		Runner:       workflowRunner,
		Suggester:    topics.NewSuggester(),
		Feed:         scheduleFeed(cfg),
		SuggestCount: cfg.Feeds.DefaultCount,
		AutoPublish:  cfg.YouTube.Enabled,
	})

	if err := apiServer.Start(); err != nil {
		fmt.Printf("Failed to start server: %v\n", err)
		os.Exit(1)
	}

	// Start cron job
	if cfg.Schedule.Cron != "" {
		if err := apiServer.StartCron(cfg.Schedule.Cron); err != nil {
			fmt.Printf("Failed to start cron: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("🎬 Shorts Daemon\n")
	fmt.Printf("   API:            http://0.0.0.0:%s\n", cfg.Server.Port)
	fmt.Printf("   Work Dir:       %s\n", cfg.Pipeline.WorkDir)
	fmt.Printf("   Cron Schedule:  %s\n", orDisabled(cfg.Schedule.Cron))
	fmt.Printf("   Kafka:          %s\n", orDisabled(strings.Join(cfg.Kafka.Brokers, ",")))
	fmt.Printf("   Archive Bucket: %s\n", orDisabled(cfg.S3.Bucket))
	fmt.Printf("   Dedup:          %s\n", enabledWhen(checker != nil))
	fmt.Printf("   YouTube:        %s\n", enabledWhen(uploader != nil))
	fmt.Println("\nPress Ctrl+C to shutdown")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		fmt.Printf("Shutdown error: %v\n", err)
	}

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			fmt.Printf("Kafka consumer close error: %v\n", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			fmt.Printf("Kafka producer close error: %v\n", err)
		}
	}
	if deduplicator != nil {
		if err := deduplicator.Close(); err != nil {
			fmt.Printf("Dedup close error: %v\n", err)
		}
	}

	fmt.Println("Server stopped")
}

// scheduleFeed picks the feed scheduled runs pull from, falling back to the
// default preset.
func scheduleFeed(cfg *config.Config) string {
	if cfg.Schedule.Feed != "" {
		return cfg.Schedule.Feed
	}
	return cfg.Feeds.DefaultPreset
}

func orDisabled(v string) string {
	if v == "" {
		return "disabled"
	}
	return v
}

func enabledWhen(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
