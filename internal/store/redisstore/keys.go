package redisstore

import (
	"fmt"

	"github.com/tablero-app/tablero/pkg/models"
)

// All keys are namespaced so several deployments can share one Redis
// server. Entities are JSON documents at their own key; set-valued index
// keys back the listing queries.

func boardKey(ns string, id models.BoardID) string {
	return fmt.Sprintf("tablero:%s:board:%s", ns, id)
}

func boardsKey(ns string) string {
	return fmt.Sprintf("tablero:%s:boards", ns)
}

func columnKey(ns string, id models.ColumnID) string {
	return fmt.Sprintf("tablero:%s:column:%s", ns, id)
}

func boardColumnsKey(ns string, id models.BoardID) string {
	return fmt.Sprintf("tablero:%s:board_columns:%s", ns, id)
}

func cardKey(ns string, id models.CardID) string {
	return fmt.Sprintf("tablero:%s:card:%s", ns, id)
}

func columnCardsKey(ns string, id models.ColumnID) string {
	return fmt.Sprintf("tablero:%s:column_cards:%s", ns, id)
}
