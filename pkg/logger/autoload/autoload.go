// Package autoload initializes the global logger from the LOG_* environment
// on import:
//
//	import _ "github.com/AhmedAtia1507/Music-Store-Customer-Support/pkg/logger/autoload"
package autoload

import (
	configx "github.com/AhmedAtia1507/Music-Store-Customer-Support/pkg/config"
	logx "github.com/AhmedAtia1507/Music-Store-Customer-Support/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
