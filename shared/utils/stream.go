package utils

import (
	"fmt"

	"github.com/markhiner/Hiner.nyc/shared/constants"
)

func SearchResultStream(searchID string) string {
	return fmt.Sprintf("%s:%s", constants.HotelSearchCompleted, searchID)
}
