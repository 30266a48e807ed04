package catalog

import "github.com/desertthunder/coursemap/internal/models"

func districts(pairs ...string) []models.Region {
	out := make([]models.Region, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Region{Code: pairs[i], Name: pairs[i+1]})
	}
	return out
}

var defaultRegions = []models.Region{
	{Code: "SEOUL", Name: "서울", Children: districts(
		"SEOUL_GANGNAM", "강남구",
		"SEOUL_GANGDONG", "강동구",
		"SEOUL_GANGSEO", "강서구",
		"SEOUL_GWANAK", "관악구",
		"SEOUL_GWANGJIN", "광진구",
		"SEOUL_GURO", "구로구",
		"SEOUL_MAPO", "마포구",
		"SEOUL_SEODAEMUN", "서대문구",
		"SEOUL_SEOCHO", "서초구",
		"SEOUL_SEONGDONG", "성동구",
		"SEOUL_SONGPA", "송파구",
		"SEOUL_YONGSAN", "용산구",
		"SEOUL_JONGNO", "종로구",
		"SEOUL_JUNG", "중구",
	)},
	{Code: "BUSAN", Name: "부산", Children: districts(
		"BUSAN_HAEUNDAE", "해운대구",
		"BUSAN_SUYEONG", "수영구",
		"BUSAN_BUSANJIN", "부산진구",
		"BUSAN_JUNG", "중구",
		"BUSAN_YEONGDO", "영도구",
		"BUSAN_GIJANG", "기장군",
	)},
	{Code: "DAEGU", Name: "대구", Children: districts(
		"DAEGU_JUNG", "중구",
		"DAEGU_SUSEONG", "수성구",
		"DAEGU_DALSEO", "달서구",
	)},
	{Code: "INCHEON", Name: "인천", Children: districts(
		"INCHEON_JUNG", "중구",
		"INCHEON_YEONSU", "연수구",
		"INCHEON_GANGHWA", "강화군",
	)},
	{Code: "GWANGJU", Name: "광주"},
	{Code: "DAEJEON", Name: "대전"},
	{Code: "ULSAN", Name: "울산"},
	{Code: "SEJONG", Name: "세종"},
	{Code: "GYEONGGI", Name: "경기", Children: districts(
		"GYEONGGI_SUWON", "수원시",
		"GYEONGGI_SEONGNAM", "성남시",
		"GYEONGGI_GOYANG", "고양시",
		"GYEONGGI_YONGIN", "용인시",
		"GYEONGGI_PAJU", "파주시",
		"GYEONGGI_GAPYEONG", "가평군",
	)},
	{Code: "GANGWON", Name: "강원", Children: districts(
		"GANGWON_CHUNCHEON", "춘천시",
		"GANGWON_GANGNEUNG", "강릉시",
		"GANGWON_SOKCHO", "속초시",
		"GANGWON_PYEONGCHANG", "평창군",
	)},
	{Code: "CHUNGBUK", Name: "충북"},
	{Code: "CHUNGNAM", Name: "충남"},
	{Code: "JEONBUK", Name: "전북", Children: districts(
		"JEONBUK_JEONJU", "전주시",
		"JEONBUK_GUNSAN", "군산시",
	)},
	{Code: "JEONNAM", Name: "전남", Children: districts(
		"JEONNAM_YEOSU", "여수시",
		"JEONNAM_SUNCHEON", "순천시",
		"JEONNAM_MOKPO", "목포시",
	)},
	{Code: "GYEONGBUK", Name: "경북", Children: districts(
		"GYEONGBUK_GYEONGJU", "경주시",
		"GYEONGBUK_ANDONG", "안동시",
		"GYEONGBUK_POHANG", "포항시",
	)},
	{Code: "GYEONGNAM", Name: "경남", Children: districts(
		"GYEONGNAM_CHANGWON", "창원시",
		"GYEONGNAM_TONGYEONG", "통영시",
		"GYEONGNAM_GEOJE", "거제시",
	)},
	{Code: "JEJU", Name: "제주", Children: districts(
		"JEJU_JEJU", "제주시",
		"JEJU_SEOGWIPO", "서귀포시",
	)},
}
