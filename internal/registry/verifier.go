package registry

import (
	"strconv"
)

type verifierProvider struct {
	rpcClient *rpcClient
}

func NewVerifier(rpcClient *rpcClient) Verifier {
	return &verifierProvider{rpcClient: rpcClient}
}

func (p *verifierProvider) IsVerified(user string) (bool, error) {
	response, err := p.rpcClient.call("IsVerified", []interface{}{user})
	if err != nil {
		return false, err
	}

	if response.Error != nil {
		return false, *response.Error
	}

	return strconv.ParseBool(asString(response))
}
