package repository

import (
	"encoding/json"
	"errors"

	"github.com/TickStack/marketplace-engine/internal/elastic_search"
	"github.com/TickStack/marketplace-engine/internal/entity"
	"github.com/olivere/elastic/v7"
)

var (
	ErrVolumeNotFound = errors.New("volume not found")
)

type VolumeRepository interface {
	GetVolume(contract string, dayBucket int64) (entity.Volume, error)
	GetContractVolumes(contract string) ([]entity.Volume, error)
}

type volumeRepository struct {
	elastic elastic_search.Index
}

func NewVolumeRepository(elastic elastic_search.Index) VolumeRepository {
	return volumeRepository{elastic}
}

func (r volumeRepository) GetVolume(contract string, dayBucket int64) (entity.Volume, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", contract),
		elastic.NewTermQuery("dayBucket", dayBucket),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.VolumeIndex.Get()).
		Query(query).
		Size(1))

	return r.findOne(result, err)
}

func (r volumeRepository) GetContractVolumes(contract string) ([]entity.Volume, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", contract),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.VolumeIndex.Get()).
		Query(query).
		Sort("dayBucket", false).
		Size(10000))

	volumes := make([]entity.Volume, 0)
	if err != nil {
		return volumes, err
	}

	for _, hit := range result.Hits.Hits {
		var volume entity.Volume
		if err := json.Unmarshal(hit.Source, &volume); err != nil {
			return volumes, err
		}
		volumes = append(volumes, volume)
	}

	return volumes, nil
}

func (r volumeRepository) findOne(results *elastic.SearchResult, err error) (entity.Volume, error) {
	if err != nil {
		return entity.Volume{}, err
	}

	if len(results.Hits.Hits) == 0 {
		return entity.Volume{}, ErrVolumeNotFound
	}

	var volume entity.Volume
	hit := results.Hits.Hits[0]
	err = json.Unmarshal(hit.Source, &volume)

	return volume, err
}
