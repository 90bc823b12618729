package registry

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Provider struct {
	rpcClient *rpcClient
}

func NewProvider(rpcClient *rpcClient) *Provider {
	return &Provider{rpcClient: rpcClient}
}

func (p *Provider) OwnerOf(contract string, tokenId uint64) (string, error) {
	response, err := p.call("OwnerOf", contract, tokenId)
	if err != nil {
		return "", err
	}

	return asString(response), nil
}

func (p *Provider) IsApprovedForAll(contract, owner, operator string) (bool, error) {
	response, err := p.call("IsApprovedForAll", contract, owner, operator)
	if err != nil {
		return false, err
	}

	return strconv.ParseBool(asString(response))
}

func (p *Provider) TransferFrom(contract, from, to string, tokenId uint64) error {
	_, err := p.call("TransferFrom", contract, from, to, tokenId)

	return err
}

func (p *Provider) RoyaltyInfo(contract string, tokenId uint64, salePrice uint64) (RoyaltyTerms, error) {
	response, err := p.call("RoyaltyInfo", contract, tokenId, salePrice)
	if err != nil {
		return RoyaltyTerms{}, err
	}

	jsonString, err := response.ResultAsJson()
	if err != nil {
		return RoyaltyTerms{}, err
	}

	var terms RoyaltyTerms
	if err := json.Unmarshal(jsonString, &terms); err != nil {
		return RoyaltyTerms{}, err
	}

	return terms, nil
}

func (p *Provider) call(method string, params ...interface{}) (*rpcResponse, error) {
	response, err := p.rpcClient.call(method, params)
	if err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, *response.Error
	}

	return response, nil
}

func asString(response *rpcResponse) string {
	return strings.Trim(response.ResultAsString(), "\"\n ")
}
