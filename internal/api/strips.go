package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/multistrip/internal/api/models"
	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/multistrip"
)

func (s *Server) registerStripRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-busses",
		Method:      http.MethodGet,
		Path:        "/api/busses",
		Summary:     "List Busses",
		Description: "Get the live bus table in order, with a contiguity check",
		Tags:        []string{"busses"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.BusListResponse, error) {
		cfgs := s.controller.Busses()
		data := models.BusListData{
			Busses: make([]models.BusData, 0, len(cfgs)),
			Count:  len(cfgs),
		}
		for i, cfg := range cfgs {
			data.Busses = append(data.Busses, busToAPI(i, cfg))
		}
		gap, ok := busses.CheckContiguity(cfgs)
		data.Contiguous = ok
		if !ok {
			data.Gap = gap
		}
		return &models.BusListResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-channels",
		Method:      http.MethodGet,
		Path:        "/api/channels",
		Summary:     "List Channels",
		Description: "Get the channel registry, enable line and initialization state",
		Tags:        []string{"channels"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.ChannelListResponse, error) {
		return &models.ChannelListResponse{Body: statusToAPI(s.controller.Status())}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "save-config",
		Method:      http.MethodPost,
		Path:        "/api/config/save",
		Summary:     "Save Configuration",
		Description: "Write the live bus table and the multi-strip section to the strips file",
		Tags:        []string{"config"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(_ context.Context, _ *struct{}) (*models.SaveResponse, error) {
		if err := s.controller.Save(); err != nil {
			s.logger.Error("Failed to save strips file", "error", err)
			return nil, huma.Error500InternalServerError("Failed to save strips file", err)
		}
		return &models.SaveResponse{Body: models.SaveData{Message: "Strips file saved"}}, nil
	})
}

func busToAPI(index int, cfg busses.Config) models.BusData {
	return models.BusData{
		Index:      index,
		Type:       uint8(cfg.Type),
		TypeName:   cfg.Type.String(),
		ColorOrder: uint8(cfg.ColorOrder),
		OrderName:  cfg.ColorOrder.String(),
		Pins:       cfg.Pins,
		Start:      cfg.Start,
		Length:     cfg.Length,
		Reversed:   cfg.Reversed,
		Skip:       cfg.Skip,
	}
}

func profileToAPI(p multistrip.Profile) models.ProfileData {
	return models.ProfileData{
		Type:       uint8(p.Type),
		TypeName:   p.Type.String(),
		ColorOrder: uint8(p.ColorOrder),
		OrderName:  p.ColorOrder.String(),
		Length:     p.Length,
	}
}

func statusToAPI(st multistrip.Status) models.ChannelListData {
	data := models.ChannelListData{
		Enabled:          st.Enabled,
		Initialized:      st.Initialized,
		SampleIntervalMs: st.SampleInterval.Milliseconds(),
		EnablePin:        st.EnablePin,
		EnableClaimed:    st.EnableClaimed,
		LastError:        st.LastError,
		Channels:         make([]models.ChannelData, 0, len(st.Channels)),
	}
	for i, ch := range st.Channels {
		data.Channels = append(data.Channels, models.ChannelData{
			Index:   i,
			Pin:     ch.Pin,
			Bus:     ch.Bus,
			Enabled: ch.Enabled(),
			State:   ch.KnownState,
			Low:     profileToAPI(ch.Profile(false)),
			High:    profileToAPI(ch.Profile(true)),
		})
	}
	return data
}
