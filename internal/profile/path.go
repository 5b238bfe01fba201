package profile

import (
	"path/filepath"
	"strings"
)

// standardEnvs get directory treatment in ProfileSourcePath when the
// extension is one of the common structured formats, matching
// original_source/config_manager/profiles.py's create_profile_source_path.
var standardEnvs = map[string]bool{
	Development: true, Testing: true, Staging: true, Production: true,
	"dev": true, "test": true, "stage": true, "prod": true,
}

var structuredExt = map[string]bool{"json": true, "yaml": true, "yml": true}

// ProfileSourcePath builds a profile-specific config file path from
// basePath, profile, and extension, per
// original_source/config_manager/profiles.py's create_profile_source_path:
//
//   - basePath ending in "/" or containing no extension with a reserved
//     profile name and a structured extension is treated as a directory:
//     "config" + "development" + "json" -> "config/development.json"
//   - an extensioned basePath gets the profile inserted before its
//     extension: "app.json" + "production" -> "app.production.json"
//   - anything else is treated as a file stem:
//     "config" + "custom" + "toml" -> "config.custom.toml"
func ProfileSourcePath(basePath, profileName, extension string) string {
	profileName = strings.ToLower(strings.TrimSpace(profileName))

	if strings.HasSuffix(basePath, "/") {
		return basePath + profileName + "." + extension
	}

	ext := filepath.Ext(basePath)
	if ext != "" {
		stem := strings.TrimSuffix(basePath, ext)
		return stem + "." + profileName + ext
	}

	if standardEnvs[profileName] && structuredExt[extension] {
		return basePath + "/" + profileName + "." + extension
	}

	dir, base := filepath.Split(basePath)
	return dir + base + "." + profileName + "." + extension
}
