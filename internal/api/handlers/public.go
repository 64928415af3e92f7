package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type publicListingFilter struct {
	Games []string `json:"games"`
}

// ListPublicGames handles GET /v1/public/games. The listing is anonymous; the
// full listing is served straight from the cache, a request filtered by the
// games query parameter or a JSON body is projected on the fly.
func (s *Server) ListPublicGames(c *gin.Context) {
	uuids := filterUUIDs(c.QueryArray("games"))
	if len(uuids) == 0 && c.Request.ContentLength > 0 {
		var filter publicListingFilter
		if err := c.ShouldBindJSON(&filter); err != nil {
			filter = publicListingFilter{}
		}
		uuids = filterUUIDs(filter.Games)
	}

	if len(uuids) > 0 {
		docs, err := s.games.PublicDocuments(c.Request.Context(), uuids)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": docs})
		return
	}

	payload, err := s.games.PublicListing(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// filterUUIDs flattens repeated and comma-separated games parameters.
func filterUUIDs(values []string) []string {
	var uuids []string
	for _, value := range values {
		for _, uuid := range strings.Split(value, ",") {
			if uuid = strings.TrimSpace(uuid); uuid != "" {
				uuids = append(uuids, uuid)
			}
		}
	}
	return uuids
}
