package mvc

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"loqus/api/models/constants/chromosome"
	"loqus/api/models/dtos"
	serviceErrors "loqus/api/models/dtos/errors"

	"github.com/labstack/echo"
)

func VariantGet(ec echo.Context) error {
	fmt.Printf("[%s] - VariantGet hit!\n", time.Now())
	store, _ := RetrieveCommonElements(ec)

	variantId := ec.Param("variantId")
	variant, err := store.Variant(variantId)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}
	if variant == nil {
		return ec.JSON(http.StatusNotFound, serviceErrors.CreateSimpleNotFound(
			fmt.Sprintf("Variant %s not found", variantId)))
	}

	total, err := store.NrCases(true, false)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}

	return ec.JSON(http.StatusOK, dtos.VariantResponseDto{
		Id:           variant.Id,
		Chrom:        variant.Chrom,
		Start:        variant.Start,
		End:          variant.End,
		Ref:          variant.Ref,
		Alt:          variant.Alt,
		Homozygote:   variant.Homozygote,
		Hemizygote:   variant.Hemizygote,
		Observations: variant.Observations,
		Families:     variant.Families,
		Total:        total,
	})
}

func StructuralVariantGet(ec echo.Context) error {
	fmt.Printf("[%s] - StructuralVariantGet hit!\n", time.Now())
	store, cfg := RetrieveCommonElements(ec)

	chrom := chromosome.StripPrefix(ec.QueryParam("chrom"), cfg.Load.ChrPrefix)
	svType := strings.ToUpper(ec.QueryParam("sv_type"))
	if chrom == "" || svType == "" {
		return ec.JSON(http.StatusBadRequest, serviceErrors.CreateSimpleBadRequest(
			"chrom and sv_type are required"))
	}
	if !chromosome.IsValidHumanChromosome(chrom) {
		return ec.JSON(http.StatusBadRequest, serviceErrors.CreateSimpleBadRequest(
			fmt.Sprintf("invalid chromosome %s", chrom)))
	}

	endChrom := chromosome.StripPrefix(ec.QueryParam("end_chrom"), cfg.Load.ChrPrefix)
	if endChrom == "" {
		endChrom = chrom
	}
	if !chromosome.IsValidHumanChromosome(endChrom) {
		return ec.JSON(http.StatusBadRequest, serviceErrors.CreateSimpleBadRequest(
			fmt.Sprintf("invalid chromosome %s", endChrom)))
	}

	pos, posErr := strconv.Atoi(ec.QueryParam("pos"))
	end, endErr := strconv.Atoi(ec.QueryParam("end"))
	if posErr != nil || endErr != nil || pos <= 0 || end <= 0 {
		return ec.JSON(http.StatusBadRequest, serviceErrors.CreateSimpleBadRequest(
			"pos and end must be positive integers"))
	}

	sv, err := store.StructuralVariant(chrom, endChrom, svType, pos, end)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}
	if sv == nil {
		return ec.JSON(http.StatusNotFound, serviceErrors.CreateSimpleNotFound(
			fmt.Sprintf("No %s cluster matching %s:%d-%s:%d", svType, chrom, pos, endChrom, end)))
	}

	total, err := store.NrCases(false, true)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}

	return ec.JSON(http.StatusOK, dtos.StructuralVariantResponseDto{
		Id:           sv.Id,
		Chrom:        sv.Chrom,
		EndChrom:     sv.EndChrom,
		SvType:       sv.SvType,
		Length:       sv.Length,
		PosLeft:      sv.PosLeft,
		PosRight:     sv.PosRight,
		EndLeft:      sv.EndLeft,
		EndRight:     sv.EndRight,
		Observations: sv.Observations,
		Families:     sv.Families,
		Total:        total,
	})
}
