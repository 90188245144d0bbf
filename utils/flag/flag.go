/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package

	Call ParseFlags from main before using any value. Packages that are also
	linked into test binaries must not parse at init time, otherwise the
	-test.* flags blow up.
*/

package flag

import (
	"flag"
)

var (
	IsDevelopment  = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName    = flag.String("service", "web_server", "name of the running service, used as a logging field")
	AppSettingPath = flag.String("app_setting", "server_app_setting.yaml", "path to the yaml app setting file")
)

func ParseFlags() {
	flag.Parse()
}
