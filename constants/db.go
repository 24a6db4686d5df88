package constants

import (
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	DBDriverLevelDB = "leveldb"
	DBDriverMysql   = "mysql"

	DefaultDBName = "ordinals"
	DefaultDBUser = "root"
	DefaultDBAddr = "127.0.0.1:3306"
)

// DBDatDir returns the default index directory for the given network name.
func DBDatDir(network string) string {
	return btcutil.AppDataDir(filepath.Join(AppName, "index", network), false)
}

// LogFile returns the default rotating log file for the given network name.
func LogFile(network string) string {
	return filepath.Join(btcutil.AppDataDir(filepath.Join(AppName, "logs", network), false), AppName+".log")
}
