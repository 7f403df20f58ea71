package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ceitask/taskboard/config"
	"github.com/ceitask/taskboard/internal/application"
	"github.com/ceitask/taskboard/internal/infrastructure/storage"
	"github.com/ceitask/taskboard/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	imageStore  storage.ImageStore
	botChecker  application.BotChecker
	jwtManager  *helpers.JWTManager
	rabbitPub   *helpers.RabbitPublisher
	esClient    *elasticsearch.Client
)

func SetConfig(c *config.Config)                { cfg = c }
func GetConfig() *config.Config                 { return cfg }
func SetLogger(l *logrus.Logger)                { logger = l }
func GetLogger() *logrus.Logger                 { return logger }
func SetPGPool(p *pgxpool.Pool)                 { pgPool = p }
func GetPGPool() *pgxpool.Pool                  { return pgPool }
func SetRedis(r *redis.Client)                  { redisClient = r }
func GetRedis() *redis.Client                   { return redisClient }
func SetImageStore(s storage.ImageStore)        { imageStore = s }
func GetImageStore() storage.ImageStore         { return imageStore }
func SetBotChecker(b application.BotChecker)    { botChecker = b }
func GetBotChecker() application.BotChecker     { return botChecker }
func SetJWT(m *helpers.JWTManager)              { jwtManager = m }
func GetJWT() *helpers.JWTManager               { return jwtManager }
func SetRabbitPub(p *helpers.RabbitPublisher)   { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher    { return rabbitPub }
func SetES(c *elasticsearch.Client)             { esClient = c }
func GetES() *elasticsearch.Client              { return esClient }
