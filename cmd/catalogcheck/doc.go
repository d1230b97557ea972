// Command catalogcheck inspects the media catalog for broken references.
//
// It reads the same configuration as the server and supports:
//
// Usage:
//
//	catalogcheck <command> [args]
//
// Commands:
//
//	check         List content records whose asset file is missing from
//	              ASSET_DIR. Exits 1 when any are missing.
//
//	playlists     List playlist entries whose content id has no content
//	              record. Exits 1 when any dangle.
//
//	export <id>   Write one playlist as a Windows Media Player (WPL)
//	              file to stdout. Each entry points at its asset path.
//
//	resolve <id>  Print the storage hash of one content record.
//
//	status        Ping the store.
//
// Environment:
//
//	STORE_DRIVER, MONGO_HOST, MONGO_PORT, STORE_DATABASE, SQLITE_PATH,
//	ASSET_DIR and ENV_FILE, as for the server.
package main
