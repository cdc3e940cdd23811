// Package configstore persists the kiosk's service address and bearer token
// in a small local file so they survive restarts.
//
// The file is JSON by default (keys api_base_url and jwt_token) or YAML when
// the path ends in .yaml or .yml. A missing file is not an error: Load returns
// the defaults. Save validates the base address and replaces the file
// atomically with mode 0600.
//
// With WithSealing the token is encrypted at rest (see pkg/secrets); plain
// tokens written by older clients are still read as is and sealed on the next
// save.
//
//	store := configstore.New("nfc_config.json", configstore.WithSealing(key, []byte(deviceID)))
//	rec, err := store.Load(ctx)
//	rec.Token = newToken
//	err = store.Save(ctx, rec)
package configstore
