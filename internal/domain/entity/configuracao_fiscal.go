package entity

import "time"

// ConfiguracaoFiscal é o cadastro do emitente (linha singleton ativa).
// O subsistema de emissão a trata como configuração somente leitura.
type ConfiguracaoFiscal struct {
	ID                     string
	CNPJ                   string
	RazaoSocial            string
	NomeFantasia           string
	InscricaoEstadual      string
	RegimeTributario       string // 1=Simples Nacional, 3=Regime Normal
	Logradouro             string
	NumeroEnd              string
	Bairro                 string
	Municipio              string
	UF                     string
	CEP                    string
	SerieNFe               string
	NaturezaOperacaoPadrao string
	Ativa                  bool
	CriadaEm               time.Time
	AtualizadaEm           time.Time
}
