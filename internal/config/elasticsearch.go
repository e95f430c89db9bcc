package config

import "time"

// ElasticsearchConfig содержит конфигурацию для подключения к Elasticsearch.
// Пустой URL отключает поиск.
type ElasticsearchConfig struct {
	URL        string        `mapstructure:"url"`
	Index      string        `mapstructure:"index"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	MaxRetries int           `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func (c ElasticsearchConfig) Enabled() bool {
	return c.URL != ""
}
