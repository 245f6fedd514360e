// Package catalog keeps the Netrunner identity and card lists used to label
// players: faction lookup for colouring and standard legality for the
// identity pickers. Data comes from NetrunnerDB and is cached on disk.
package catalog

import "github.com/Dosada05/swisscut/models"

// NonStandardSeparator splits legal identities from the rest in pick lists.
const NonStandardSeparator = " --- Non Standard IDs --- "

type Identity struct {
	Name    string      `json:"name"`
	Side    models.Side `json:"side"`
	Faction string      `json:"faction"`
	Legal   bool        `json:"legal"`
}

type Card struct {
	Title         string      `json:"title"`
	Side          models.Side `json:"side"`
	Faction       string      `json:"faction"`
	Type          string      `json:"type"`
	Influence     int         `json:"influence"`
	StrippedTitle string      `json:"stripped_title"`
}
