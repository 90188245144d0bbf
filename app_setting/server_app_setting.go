package app_setting

import (
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"
)

// This is the behavior config for the web server. Connection strings and
// secrets stay in the env; knobs that change what the server does live
// here.
type ServerAppSetting struct {
	// Full-page cache TTL for the index feed, in seconds. The original
	// platform cached its front page for 20 seconds; keep that default.
	PAGE_CACHE_TTL_SECOND int64 `yaml:"PAGE_CACHE_TTL_SECOND"`
	// Directory post images are written to when using local disk storage.
	MEDIA_ROOT string `yaml:"MEDIA_ROOT"`
	// When true only a post's author may edit it. The legacy behavior
	// (false) let any authenticated user edit any post.
	RESTRICT_POST_EDIT_TO_AUTHOR bool `yaml:"RESTRICT_POST_EDIT_TO_AUTHOR"`
	// Store images on S3 instead of local disk.
	USE_S3_IMAGE_STORE bool   `yaml:"USE_S3_IMAGE_STORE"`
	S3_REGION          string `yaml:"S3_REGION"`
	S3_BUCKET          string `yaml:"S3_BUCKET"`
	S3_URL_PREFIX      string `yaml:"S3_URL_PREFIX"`
}

func DefaultServerAppSetting() ServerAppSetting {
	return ServerAppSetting{
		PAGE_CACHE_TTL_SECOND:        20,
		MEDIA_ROOT:                   "media",
		RESTRICT_POST_EDIT_TO_AUTHOR: true,
	}
}

// ParseServerAppSetting reads the yaml setting file at path. Missing file is
// fatal; missing keys fall back to zero values, so ship the full file.
func ParseServerAppSetting(path string) ServerAppSetting {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatalln("fail to read app setting file: ", path)
	}
	setting := ServerAppSetting{}
	if err := yaml.Unmarshal(content, &setting); err != nil {
		log.Fatalln("fail to parse app setting file: ", path)
	}
	return setting
}
