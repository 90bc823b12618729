package repository

import (
	"encoding/json"
	"errors"

	"github.com/TickStack/marketplace-engine/internal/elastic_search"
	"github.com/TickStack/marketplace-engine/internal/entity"
	"github.com/olivere/elastic/v7"
)

var (
	ErrEscrowNotFound = errors.New("escrow not found")
)

type EscrowRepository interface {
	GetEscrow() (entity.Escrow, error)
}

type escrowRepository struct {
	elastic elastic_search.Index
}

func NewEscrowRepository(elastic elastic_search.Index) EscrowRepository {
	return escrowRepository{elastic}
}

func (r escrowRepository) GetEscrow() (entity.Escrow, error) {
	result, err := search(r.elastic.GetClient().
		Search(elastic_search.EscrowIndex.Get()).
		Query(elastic.NewMatchAllQuery()).
		Size(1))

	if err != nil {
		return entity.Escrow{}, err
	}

	if len(result.Hits.Hits) == 0 {
		return entity.Escrow{}, ErrEscrowNotFound
	}

	var escrow entity.Escrow
	err = json.Unmarshal(result.Hits.Hits[0].Source, &escrow)

	return escrow, err
}
