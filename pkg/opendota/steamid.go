package opendota

import (
	"fmt"
	"strconv"
)

// steam64Base is the offset between 64-bit SteamIDs and the 32-bit account
// ids OpenDota keys players by.
const steam64Base = 76561197960265728

// Steam32 converts a 64-bit SteamID string to the 32-bit account id.
func Steam32(steam64 string) (string, error) {
	id, err := strconv.ParseUint(steam64, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid steam id %q: %w", steam64, err)
	}
	if id < steam64Base {
		return "", fmt.Errorf("invalid steam id %q: below Steam64 range", steam64)
	}
	return strconv.FormatUint(id-steam64Base, 10), nil
}
